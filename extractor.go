package docbase

// Default labels used when a page yields no better information.
const (
	// RootSection labels content that precedes any heading.
	RootSection = "Overview"

	// FallbackTitle labels pages with no discoverable title.
	FallbackTitle = "Untitled"

	// MaxFallbackChars clamps the single fallback block produced for pages
	// with non-standard structure.
	MaxFallbackChars = 4000
)

// ContentBlock is an ordered, labeled unit of extracted page text. Blocks
// are created during extraction and consumed immediately by the chunker;
// they are not persisted.
type ContentBlock struct {
	// Section is the nearest preceding heading text, or RootSection.
	Section string

	// Text is the cleaned block content.
	Text string
}

// ExtractResult holds the extracted content of a page.
type ExtractResult struct {
	// Title is the resolved page title, never empty.
	Title string

	// Blocks are the page's content blocks in document order.
	Blocks []ContentBlock
}

// Extractor converts a page's markup into a title and ordered content
// blocks.
type Extractor interface {
	// Extract processes raw HTML and returns the page title and content
	// blocks. The pageURL provides context for diagnostics. An extraction
	// failure is scoped to one page and must not abort a crawl.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
