package mock

import "github.com/owalsh/docbase"

var _ docbase.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of docbase.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(html string, baseURL string) ([]string, error)
}

func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]string, error) {
	return s.ExtractLinksFn(html, baseURL)
}
