package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"sort"

	"github.com/fwojciec/curator"
)

// DefaultMaxPagesPerPackage caps glob expansion for one package.
const DefaultMaxPagesPerPackage = 200

// Discoverer expands a package's glob patterns into page URLs. Candidates
// come from the site's sitemap and from links on the package's literal
// index pages; discovery never goes further than one hop.
type Discoverer struct {
	Sitemaps curator.SitemapService
	Links    curator.LinkExtractor
	MaxPages int
	Logger   *slog.Logger
}

// LiteralPages resolves the package's literal patterns against its docs
// URL, in pattern order.
func LiteralPages(pkg *curator.Package) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, pattern := range pkg.Patterns {
		if curator.IsGlob(pattern) {
			continue
		}
		u, err := pkg.ResolvePattern(pattern)
		if err != nil || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

func hasGlob(pkg *curator.Package) bool {
	for _, pattern := range pkg.Patterns {
		if curator.IsGlob(pattern) {
			return true
		}
	}
	return false
}

// Expand returns the pages matching the package's glob patterns, ordered
// by pattern and then by discovery order, without literal pages. Sitemap
// and link failures are logged and skipped; only context errors are
// returned.
func (d *Discoverer) Expand(ctx context.Context, pkg *curator.Package, index []*curator.Document) ([]string, error) {
	if !hasGlob(pkg) {
		return nil, nil
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var candidates []string
	if d.Sitemaps != nil {
		urls, err := d.Sitemaps.DiscoverURLs(ctx, pkg.DocsURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("sitemap discovery failed", "package", pkg.Name, "err", err)
		}
		candidates = append(candidates, urls...)
	}
	if d.Links != nil {
		for _, doc := range index {
			links, err := d.Links.ExtractLinks(doc.Body, doc.URL)
			if err != nil {
				logger.Warn("link extraction failed", "package", pkg.Name, "url", doc.URL, "err", err)
				continue
			}
			candidates = append(candidates, links...)
		}
	}

	literal := make(map[string]bool)
	for _, u := range LiteralPages(pkg) {
		literal[u] = true
	}

	type match struct {
		url     string
		pattern int
	}
	var matches []match
	seen := make(map[string]bool)
	for _, c := range candidates {
		u := normalizeURL(c)
		if u == "" || seen[u] || literal[u] {
			continue
		}
		seen[u] = true
		if p := pkg.MatchURL(u); p >= 0 {
			matches = append(matches, match{url: u, pattern: p})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].pattern < matches[j].pattern
	})

	limit := d.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPagesPerPackage
	}
	if len(matches) > limit {
		logger.Info("page cap reached", "package", pkg.Name, "matched", len(matches), "cap", limit)
		matches = matches[:limit]
	}

	urls := make([]string, len(matches))
	for i, m := range matches {
		urls[i] = m.url
	}
	return urls, nil
}

// normalizeURL drops fragments so anchors on one page collapse into it.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
