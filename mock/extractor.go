package mock

import "github.com/owalsh/docbase"

var _ docbase.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docbase.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*docbase.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*docbase.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
