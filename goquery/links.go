package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/owalsh/docbase"
)

// Ensure LinkSelector implements docbase.LinkSelector at compile time.
var _ docbase.LinkSelector = (*LinkSelector)(nil)

// LinkSelector extracts same-host links from HTML in document order.
type LinkSelector struct{}

// NewLinkSelector creates a new LinkSelector.
func NewLinkSelector() *LinkSelector {
	return &LinkSelector{}
}

// ExtractLinks parses HTML and returns canonicalized same-host links,
// deduplicated by first occurrence. Relative hrefs are resolved against
// baseURL before canonicalization; fragments and tracking parameters never
// produce distinct entries.
func (s *LinkSelector) ExtractLinks(rawHTML string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		canonical := docbase.CanonicalizeURL(base, href)
		if canonical == "" {
			return
		}

		// Exact host match; subdomains are considered different hosts.
		u, err := url.Parse(canonical)
		if err != nil || u.Host != base.Host {
			return
		}

		if seen[canonical] {
			return
		}
		seen[canonical] = true
		links = append(links, canonical)
	})

	return links, nil
}
