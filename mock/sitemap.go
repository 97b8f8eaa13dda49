package mock

import (
	"context"

	"github.com/owalsh/docbase"
)

var _ docbase.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docbase.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, scope docbase.Scope) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, scope docbase.Scope) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, scope)
}
