package docbase

import (
	"net/url"
	"strings"
)

// Scope is the host and path-prefix boundary defining which discovered
// links the crawler will follow.
type Scope struct {
	Host       string
	PathPrefix string
}

// NewScope derives a crawl scope from a start URL.
func NewScope(rawURL string) (Scope, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Scope{}, Errorf(EINVALID, "invalid start URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return Scope{}, Errorf(EINVALID, "start URL %q has no host", rawURL)
	}
	return Scope{
		Host:       u.Host,
		PathPrefix: normalizePath(u.Path),
	}, nil
}

// Allows reports whether a URL belongs to the crawl scope: its host must
// equal the scope host and its normalized path must start with the scope
// path prefix, plain string-prefix semantics. Malformed URLs are out of
// scope, never an error. Fragments, tracking parameters and trailing
// slashes do not affect the outcome.
func (s Scope) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Host != s.Host {
		return false
	}
	return strings.HasPrefix(normalizePath(u.Path), s.PathPrefix)
}

// trackingParams are query parameters stripped during canonicalization.
// Parameters with a "utm_" prefix are stripped as well.
var trackingParams = map[string]bool{
	"gclid":  true,
	"fbclid": true,
	"mc_cid": true,
	"mc_eid": true,
	"ref":    true,
}

// CanonicalizeURL resolves href against base and canonicalizes the result:
// non-HTTP schemes are rejected, the fragment is dropped, tracking query
// parameters are stripped, and the trailing slash is normalized away except
// for the root path. Returns "" if the href cannot be canonicalized or
// resolves to the base URL itself.
func CanonicalizeURL(base *url.URL, href string) string {
	if isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	canonical := NormalizeURL(resolved.String())
	if canonical == "" || canonical == NormalizeURL(base.String()) {
		return ""
	}
	return canonical
}

// NormalizeURL canonicalizes an absolute URL: fragment dropped, tracking
// query parameters stripped, trailing slash normalized away except for the
// root path. Returns "" for URLs that cannot be parsed or have no host.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	u.Path = normalizePath(u.Path)

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if trackingParams[key] || strings.HasPrefix(key, "utm_") {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// normalizePath trims the trailing slash except for the root path and
// ensures a leading slash.
func normalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	path = strings.TrimSuffix(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// isNonHTTPLink reports whether a href uses a scheme that should never be
// crawled (javascript:, mailto:, etc.).
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
