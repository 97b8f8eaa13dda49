package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/owalsh/docbase"
	"github.com/owalsh/docbase/crawl"
	"github.com/owalsh/docbase/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Store    *fs.Store
	Searcher *docbase.Searcher
	Crawler  *crawl.Crawler
	Asker    docbase.Asker
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a documentation site into the chunk artifact"`
	Search SearchCmd `cmd:"" help:"Rank artifact chunks against a query"`
	Ask    AskCmd    `cmd:"" help:"Ask a question answered from crawled documentation"`
	Chunks ChunksCmd `cmd:"" help:"List chunks stored in the artifact"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL     string        `arg:"" help:"Start URL; its host and path prefix define the crawl scope"`
	Pages   int           `short:"p" default:"200" help:"Maximum pages to visit"`
	Delay   time.Duration `default:"1s" help:"Politeness delay between fetches"`
	Timeout time.Duration `default:"10s" help:"Per-request fetch timeout"`
	Render  bool          `help:"Render pages with headless Chrome before extraction"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Query to rank chunks against"`
	K     int    `short:"k" default:"6" help:"Maximum results"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the documentation"`
	K        int    `short:"k" default:"6" help:"Maximum source chunks sent to the model"`
}

// ChunksCmd is the "chunks" subcommand.
type ChunksCmd struct {
	Full bool `help:"Show full chunk text"`
}
