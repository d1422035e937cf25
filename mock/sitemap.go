package mock

import (
	"context"

	"github.com/fwojciec/curator"
)

var _ curator.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of curator.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ curator.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of curator.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	return l.ExtractLinksFn(html, baseURL)
}
