package docbase

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use plain HTTP or browser automation for
// JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the HTML for a URL. The context controls timeout and
	// cancellation. A non-success response or transport error is a
	// recoverable per-URL failure, not fatal to a crawl.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
