// Package crawl provides documentation crawling orchestration: a strictly
// sequential BFS over in-scope pages, bounded by a page cap, producing the
// chunk collection that becomes the persisted artifact.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/owalsh/docbase"
)

// DefaultPageCap bounds a crawl when no cap is configured.
const DefaultPageCap = 200

// Frontier sizing for Bloom filter deduplication.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// Crawler orchestrates fetch, extraction, link discovery and chunking.
// All collaborators are injected; the crawl loop owns its frontier and
// visited set, so concurrent Crawl calls on separate Crawler values are
// independent.
type Crawler struct {
	Fetcher   docbase.Fetcher
	Extractor docbase.Extractor

	// Fallback, if set, is tried when Extractor fails or yields no blocks.
	Fallback docbase.Extractor

	// Links discovers outgoing links; nil disables link following.
	Links docbase.LinkSelector

	// Sitemaps, if set, pre-seeds the frontier before BFS link-following.
	Sitemaps docbase.SitemapService

	// Limiter enforces the politeness delay between successive fetches.
	Limiter *PolitenessLimiter

	Logger      *slog.Logger
	PageCap     int
	RetryDelays []time.Duration
	Split       docbase.SplitOptions
}

// Result holds the outcome of a crawl run. Per-URL failures are independent
// and never abort the run; callers learn of them through the counters.
type Result struct {
	Visited   int
	Succeeded int
	Failed    int
	Chunks    []docbase.Chunk
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Visited int
	Cap     int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetching ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl traverses the site breadth-first from startURL. URLs are fetched at
// most once, strictly sequentially, with the politeness delay elapsing
// between successive fetches. Traversal halts when the page cap is reached
// or the frontier empties, whichever comes first. Link discovery happens
// only after successful extraction; every in-scope, canonicalized link not
// already seen is appended to the frontier tail, preserving first-discovery
// order.
func (c *Crawler) Crawl(ctx context.Context, startURL string, progress ProgressFunc) (*Result, error) {
	scope, err := docbase.NewScope(startURL)
	if err != nil {
		return nil, err
	}
	seed := docbase.NormalizeURL(startURL)
	if seed == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "invalid start URL %q", startURL)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pageCap := c.PageCap
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(seed)

	if c.Sitemaps != nil {
		urls, err := c.Sitemaps.DiscoverURLs(ctx, startURL, scope)
		if err != nil {
			logger.Warn("sitemap discovery failed", "url", startURL, "error", err)
		} else {
			for _, u := range urls {
				if normalized := docbase.NormalizeURL(u); normalized != "" {
					frontier.Push(normalized)
				}
			}
			logger.Info("sitemap discovery", "urls", len(urls))
		}
	}

	result := &Result{}

	for result.Visited < pageCap {
		pageURL, ok := frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			break
		}

		// Politeness delay between successive fetches. One fetch in flight
		// at a time.
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, hostOf(pageURL)); err != nil {
				break
			}
		}

		result.Visited++
		if progress != nil {
			progress(ProgressEvent{Type: ProgressFetching, URL: pageURL, Visited: result.Visited, Cap: pageCap})
		}

		html, err := FetchWithRetryDelays(ctx, pageURL, c.Fetcher.Fetch, logger, delays)
		if err != nil {
			result.Failed++
			logger.Warn("fetch failed", "url", pageURL, "error", err)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, URL: pageURL, Visited: result.Visited, Cap: pageCap, Error: err})
			}
			continue
		}

		extracted, err := c.extract(html, pageURL)
		if err != nil {
			// The page contributes zero chunks and, since extraction never
			// located its anchors, zero links.
			result.Failed++
			logger.Warn("extraction failed", "url", pageURL, "error", err)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, URL: pageURL, Visited: result.Visited, Cap: pageCap, Error: err})
			}
			continue
		}

		if c.Links != nil {
			links, err := c.Links.ExtractLinks(html, pageURL)
			if err != nil {
				logger.Warn("link discovery failed", "url", pageURL, "error", err)
			} else {
				for _, link := range links {
					if scope.Allows(link) {
						frontier.Push(link)
					}
				}
			}
		}

		result.Chunks = append(result.Chunks, chunksFromPage(pageURL, extracted, c.Split)...)
		result.Succeeded++
		if progress != nil {
			progress(ProgressEvent{Type: ProgressCompleted, URL: pageURL, Visited: result.Visited, Cap: pageCap})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Visited: result.Visited, Cap: pageCap})
	}

	logger.Info("crawl finished",
		"visited", result.Visited,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"chunks", len(result.Chunks),
	)
	return result, nil
}

// extract runs the primary extractor, falling back to the secondary one
// when the primary fails or yields no blocks.
func (c *Crawler) extract(html, pageURL string) (*docbase.ExtractResult, error) {
	extracted, err := c.Extractor.Extract(html, pageURL)
	if err == nil && len(extracted.Blocks) > 0 {
		return extracted, nil
	}
	if c.Fallback != nil {
		if fb, ferr := c.Fallback.Extract(html, pageURL); ferr == nil && len(fb.Blocks) > 0 {
			return fb, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return extracted, nil
}

// chunksFromPage splits a page's blocks into chunks with stable ids. The
// sequence index counts per section so that ids survive unrelated edits
// elsewhere on the page.
func chunksFromPage(pageURL string, extracted *docbase.ExtractResult, opts docbase.SplitOptions) []docbase.Chunk {
	var chunks []docbase.Chunk
	seq := make(map[string]int)
	for _, block := range extracted.Blocks {
		for _, piece := range docbase.SplitText(block.Text, opts) {
			n := seq[block.Section]
			seq[block.Section] = n + 1
			chunks = append(chunks, docbase.Chunk{
				ID:      docbase.ChunkID(pageURL, block.Section, n),
				Title:   extracted.Title,
				Section: block.Section,
				URL:     pageURL,
				Text:    piece,
			})
		}
	}
	return chunks
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
