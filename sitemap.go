package curator

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	// Only URLs below baseURL's path are returned.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// LinkExtractor pulls same-host links out of an index page.
type LinkExtractor interface {
	// ExtractLinks returns absolute URLs in document order, deduplicated.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
