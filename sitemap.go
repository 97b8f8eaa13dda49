package docbase

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds in-scope URLs from a site's sitemap. It checks
	// robots.txt for sitemap directives first, then falls back to
	// /sitemap.xml. Sitemap indexes are resolved recursively. URLs outside
	// the scope are dropped.
	DiscoverURLs(ctx context.Context, baseURL string, scope Scope) ([]string, error)
}
