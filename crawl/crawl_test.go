package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/owalsh/docbase"
	"github.com/owalsh/docbase/crawl"
	"github.com/owalsh/docbase/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSplit keeps chunking out of the way in crawl tests.
var testSplit = docbase.SplitOptions{TargetSize: 500, Overlap: 0, MinSize: 10}

// noRetries disables retry sleeps in tests.
var noRetries = []time.Duration{}

// page describes a fake site page for crawl tests.
type page struct {
	title  string
	blocks []docbase.ContentBlock
	links  []string
}

// siteCrawler builds a Crawler over an in-memory site keyed by URL and
// records the fetch order.
func siteCrawler(site map[string]page, fetched *[]string) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				*fetched = append(*fetched, url)
				if _, ok := site[url]; !ok {
					return "", docbase.Errorf(docbase.ENOTFOUND, "no page at %s", url)
				}
				return "<html>" + url + "</html>", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html, pageURL string) (*docbase.ExtractResult, error) {
				p := site[pageURL]
				return &docbase.ExtractResult{Title: p.title, Blocks: p.blocks}, nil
			},
		},
		Links: &mock.LinkSelector{
			ExtractLinksFn: func(html, baseURL string) ([]string, error) {
				return site[baseURL].links, nil
			},
		},
		RetryDelays: noRetries,
		Split:       testSplit,
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("single page produces chunks with stable identity", func(t *testing.T) {
		t.Parallel()

		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "Guide",
				blocks: []docbase.ContentBlock{
					{Section: "Overview", Text: "The overview paragraph with enough words to keep."},
					{Section: "Install", Text: "The install paragraph with enough words to keep."},
				},
			},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Visited)
		assert.Equal(t, 1, result.Succeeded)
		assert.Zero(t, result.Failed)

		require.Len(t, result.Chunks, 2)
		first := result.Chunks[0]
		assert.Equal(t, docbase.ChunkID("https://docs.example.com/guide", "Overview", 0), first.ID)
		assert.Equal(t, "Guide", first.Title)
		assert.Equal(t, "Overview", first.Section)
		assert.Equal(t, "https://docs.example.com/guide", first.URL)
		assert.Equal(t, "The overview paragraph with enough words to keep.", first.Text)
	})

	t.Run("follows in-scope links breadth-first, each URL once", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "A", blocks: blocks,
				links: []string{
					"https://docs.example.com/guide/b",
					"https://docs.example.com/guide/c",
				},
			},
			"https://docs.example.com/guide/b": {
				title: "B", blocks: blocks,
				links: []string{
					"https://docs.example.com/guide/c",
					"https://docs.example.com/guide/d",
				},
			},
			"https://docs.example.com/guide/c": {title: "C", blocks: blocks},
			"https://docs.example.com/guide/d": {title: "D", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"https://docs.example.com/guide",
			"https://docs.example.com/guide/b",
			"https://docs.example.com/guide/c",
			"https://docs.example.com/guide/d",
		}, fetched)
		assert.Equal(t, 4, result.Visited)
		assert.Equal(t, 4, result.Succeeded)
	})

	t.Run("ignores out-of-scope links", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "A", blocks: blocks,
				links: []string{
					"https://other.example.com/guide/x",
					"https://docs.example.com/blog/post",
					"https://docs.example.com/guide/b",
				},
			},
			"https://docs.example.com/guide/b": {title: "B", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"https://docs.example.com/guide",
			"https://docs.example.com/guide/b",
		}, fetched)
		assert.Equal(t, 2, result.Visited)
	})

	t.Run("fetch failure is counted and does not abort the crawl", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "A", blocks: blocks,
				links: []string{
					"https://docs.example.com/guide/missing",
					"https://docs.example.com/guide/b",
				},
			},
			"https://docs.example.com/guide/b": {title: "B", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Visited)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Chunks, 2)
	})

	t.Run("extraction failure contributes no chunks and no links", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					fetched = append(fetched, url)
					return "<html></html>", nil
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(html, pageURL string) (*docbase.ExtractResult, error) {
					return nil, errors.New("malformed page")
				},
			},
			Links: &mock.LinkSelector{
				ExtractLinksFn: func(html, baseURL string) ([]string, error) {
					t.Fatal("links should not be extracted after failed extraction")
					return nil, nil
				},
			},
			RetryDelays: noRetries,
			Split:       testSplit,
		}

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://docs.example.com/guide"}, fetched)
		assert.Equal(t, 1, result.Failed)
		assert.Empty(t, result.Chunks)
	})

	t.Run("fallback extractor rescues a page the primary cannot parse", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(html, pageURL string) (*docbase.ExtractResult, error) {
					return nil, errors.New("malformed page")
				},
			},
			Fallback: &mock.Extractor{
				ExtractFn: func(html, pageURL string) (*docbase.ExtractResult, error) {
					return &docbase.ExtractResult{
						Title:  "Rescued",
						Blocks: []docbase.ContentBlock{{Section: "Overview", Text: "Recovered body text."}},
					}, nil
				},
			},
			RetryDelays: noRetries,
			Split:       testSplit,
		}

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Succeeded)
		require.Len(t, result.Chunks, 1)
		assert.Equal(t, "Rescued", result.Chunks[0].Title)
	})

	t.Run("stops at the page cap", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "A", blocks: blocks,
				links: []string{
					"https://docs.example.com/guide/b",
					"https://docs.example.com/guide/c",
					"https://docs.example.com/guide/d",
				},
			},
			"https://docs.example.com/guide/b": {title: "B", blocks: blocks},
			"https://docs.example.com/guide/c": {title: "C", blocks: blocks},
			"https://docs.example.com/guide/d": {title: "D", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)
		c.PageCap = 2

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Visited)
		assert.Len(t, fetched, 2)
	})

	t.Run("sitemap discovery pre-seeds the frontier", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide":         {title: "A", blocks: blocks},
			"https://docs.example.com/guide/sitemap": {title: "S", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, scope docbase.Scope) ([]string, error) {
				return []string{"https://docs.example.com/guide/sitemap"}, nil
			},
		}

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"https://docs.example.com/guide",
			"https://docs.example.com/guide/sitemap",
		}, fetched)
		assert.Equal(t, 2, result.Succeeded)
	})

	t.Run("sitemap discovery failure is non-fatal", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {title: "A", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, scope docbase.Scope) ([]string, error) {
				return nil, errors.New("robots.txt unreachable")
			},
		}

		result, err := c.Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Succeeded)
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {title: "A", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		var events []crawl.ProgressType
		_, err := c.Crawl(context.Background(), "https://docs.example.com/guide", func(e crawl.ProgressEvent) {
			events = append(events, e.Type)
		})
		require.NoError(t, err)

		assert.Equal(t, []crawl.ProgressType{
			crawl.ProgressFetching,
			crawl.ProgressCompleted,
			crawl.ProgressFinished,
		}, events)
	})

	t.Run("returns EINVALID for a start URL without host", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		c := siteCrawler(map[string]page{}, &fetched)

		_, err := c.Crawl(context.Background(), "/no/host", nil)

		assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))
	})

	t.Run("canceled context stops the crawl", func(t *testing.T) {
		t.Parallel()

		blocks := []docbase.ContentBlock{{Section: "Overview", Text: "Body text for the page."}}
		site := map[string]page{
			"https://docs.example.com/guide": {title: "A", blocks: blocks},
		}
		var fetched []string
		c := siteCrawler(site, &fetched)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := c.Crawl(ctx, "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Zero(t, result.Visited)
		assert.Empty(t, fetched)
	})

	t.Run("identical crawl yields identical chunk ids", func(t *testing.T) {
		t.Parallel()

		site := map[string]page{
			"https://docs.example.com/guide": {
				title: "Guide",
				blocks: []docbase.ContentBlock{
					{Section: "Overview", Text: "The overview paragraph with enough words to keep."},
				},
			},
		}

		var fetchedA, fetchedB []string
		a, err := siteCrawler(site, &fetchedA).Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)
		b, err := siteCrawler(site, &fetchedB).Crawl(context.Background(), "https://docs.example.com/guide", nil)
		require.NoError(t, err)

		assert.Equal(t, a.Chunks, b.Chunks)
	})
}
