// Package rod provides a browser-backed docbase.Fetcher for documentation
// sites that require JavaScript rendering.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/owalsh/docbase"
)

// DefaultRenderDelay is the extra wait after page load for async content.
const DefaultRenderDelay = 500 * time.Millisecond

// Ensure Fetcher implements docbase.Fetcher at compile time.
var _ docbase.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using headless Chrome. The crawl loop is
// sequential, so a single browser with one page at a time is sufficient.
type Fetcher struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	renderDelay time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderDelay sets the post-load wait before the HTML is captured.
func WithRenderDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.renderDelay = d }
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{renderDelay: DefaultRenderDelay}
	for _, opt := range opts {
		opt(f)
	}

	f.launcher = launcher.New().Headless(true)
	u, err := f.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		f.launcher.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	f.browser = browser

	return f, nil
}

// Fetch navigates to the URL, waits for the page to load plus the render
// delay, and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if f.renderDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.renderDelay):
		}
	}

	return page.HTML()
}

// Close shuts down the browser and kills the launched Chrome process along
// with its temporary profile directory.
func (f *Fetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Kill()
	f.launcher.Cleanup()
	return err
}
