// Package trafilatura provides a fallback docbase.Extractor built on
// go-trafilatura's boilerplate-removal heuristics. It produces a single
// root-labeled block and is used when the structural extractor yields
// nothing for a page.
package trafilatura

import (
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/owalsh/docbase"
)

// Ensure Extractor implements docbase.Extractor at compile time.
var _ docbase.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract runs trafilatura over the page and flattens the result into one
// clamped block labeled with the root section. Pages whose extracted text
// falls below the minimum chunk size contribute no blocks.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*docbase.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "empty HTML input for %s", pageURL)
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(result.Metadata.Title)
	if title == "" {
		title = docbase.FallbackTitle
	}

	text := docbase.Clean(result.ContentText)
	if len(text) > docbase.MaxFallbackChars {
		text = docbase.Clean(text[:docbase.MaxFallbackChars])
	}

	var blocks []docbase.ContentBlock
	if len(text) >= docbase.MinChunkChars {
		blocks = append(blocks, docbase.ContentBlock{
			Section: docbase.RootSection,
			Text:    text,
		})
	}

	return &docbase.ExtractResult{Title: title, Blocks: blocks}, nil
}
