package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/owalsh/docbase"
	"golang.org/x/sync/errgroup"
)

// sitemapConcurrency bounds parallel sitemap file fetches. Sitemap files
// are few and static; this never applies to page crawling, which stays
// strictly sequential.
const sitemapConcurrency = 4

// Ensure SitemapService implements docbase.SitemapService at compile time.
var _ docbase.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP
// client. If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs finds in-scope URLs from a site's sitemap. It checks
// robots.txt for Sitemap directives first, falling back to /sitemap.xml,
// and resolves sitemap indexes recursively. URLs the scope does not allow
// are dropped. Returns an empty slice (not nil) when no sitemap exists.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, scope docbase.Scope) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "invalid base URL: %v", err)
	}

	// Sitemaps live at the domain root regardless of the scope prefix.
	sitemapBase := *base
	sitemapBase.Path = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &sitemapBase)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	collector := newURLCollector()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sitemapConcurrency)
	for _, sitemapURL := range sitemapURLs {
		g.Go(func() error {
			return s.processSitemap(gctx, sitemapURL, collector)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var allowed []string
	for _, u := range collector.urls() {
		if scope.Allows(u) {
			allowed = append(allowed, u)
		}
	}
	if allowed == nil {
		allowed = []string{}
	}
	return allowed, nil
}

// findSitemapURLs discovers sitemap locations from robots.txt, falling back
// to the conventional /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if sitemapURL := strings.TrimSpace(line[len("sitemap:"):]); sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// processSitemap fetches and parses one sitemap document, handling both
// <urlset> and <sitemapindex> roots. Indexes recurse.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, collector *urlCollector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !collector.markSitemap(sitemapURL) {
		return nil
	}

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		for _, sitemap := range root.SelectElements("sitemap") {
			loc := sitemap.SelectElement("loc")
			if loc == nil {
				continue
			}
			child := strings.TrimSpace(loc.Text())
			if child == "" {
				continue
			}
			if err := s.processSitemap(ctx, child, collector); err != nil {
				return err
			}
		}
		return nil
	}

	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			collector.add(u)
		}
	}
	return nil
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

// urlExists checks whether a URL answers 200 to a HEAD request.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// urlCollector deduplicates URLs and visited sitemaps across concurrent
// sitemap workers.
type urlCollector struct {
	mu       sync.Mutex
	seen     map[string]bool
	sitemaps map[string]bool
	ordered  []string
}

func newURLCollector() *urlCollector {
	return &urlCollector{
		seen:     make(map[string]bool),
		sitemaps: make(map[string]bool),
	}
}

// markSitemap records a sitemap URL, returning false if already processed.
func (c *urlCollector) markSitemap(u string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sitemaps[u] {
		return false
	}
	c.sitemaps[u] = true
	return true
}

func (c *urlCollector) add(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[u] {
		return
	}
	c.seen[u] = true
	c.ordered = append(c.ordered, u)
}

func (c *urlCollector) urls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ordered
}
