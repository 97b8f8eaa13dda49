package main

import (
	"fmt"

	"github.com/owalsh/docbase"
	"github.com/owalsh/docbase/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressFetching:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Visited, event.Cap, crawl.TruncateURL(event.URL, 72))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 72), event.Error)
		case crawl.ProgressFinished:
			// Summary printed after crawl completes
		}
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, c.URL, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	index := docbase.BuildIndex(result.Chunks)
	if err := deps.Store.WriteChunks(deps.Ctx, index); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	var bytes int
	for _, chunk := range index {
		bytes += len(chunk.Text)
	}

	fmt.Fprintf(deps.Stdout, "Crawled %d pages (%d ok, %d failed)\n",
		result.Visited, result.Succeeded, result.Failed)
	fmt.Fprintf(deps.Stdout, "Saved %d chunks (%s) to %s\n",
		len(index), crawl.FormatBytes(bytes), deps.Store.Path())
	return nil
}
