package goquery_test

import (
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns absolute links in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="sphx-glr-thumbnails">
	<a href="map/plot_aia.html">AIA</a>
	<a href="time_series/plot_goes.html">GOES</a>
</div>
</body></html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html, "https://docs.sunpy.org/en/stable/generated/gallery/index.html")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://docs.sunpy.org/en/stable/generated/gallery/map/plot_aia.html",
			"https://docs.sunpy.org/en/stable/generated/gallery/time_series/plot_goes.html",
		}, links)
	})

	t.Run("deduplicates links and strips fragments", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/docs/guide">Guide</a>
<a href="/docs/guide#install">Install</a>
<a href="/docs/other">Other</a>
<a href="/docs/guide">Guide again</a>
</body></html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html, "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/docs/guide",
			"https://example.com/docs/other",
		}, links)
	})

	t.Run("filters external links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="https://github.com/sunpy/sunpy">GitHub</a>
<a href="https://api.example.com/x">Subdomain</a>
<a href="/docs/intro">Intro</a>
</body></html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs/intro"}, links)
	})

	t.Run("skips non-HTTP scheme links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="javascript:void(0)">JS</a>
<a href="mailto:team@example.com">Mail</a>
<a href="tel:+1234567890">Phone</a>
<a href="data:text/html,hi">Data</a>
<a href="/docs/real">Real</a>
</body></html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs/real"}, links)
	})

	t.Run("filters self-referential anchor links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<h1>Gallery<a class="headerlink" href="#gallery">¶</a></h1>
<a href="plot_one.html">One</a>
</body></html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html, "https://example.com/gallery/index.html")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/gallery/plot_one.html"}, links)
	})

	t.Run("handles empty HTML", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.NewLinkExtractor().ExtractLinks("", "https://example.com")

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("returns error for invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewLinkExtractor().ExtractLinks(`<a href="/docs">Docs</a>`, "://invalid-url")

		require.Error(t, err)
		assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
	})
}
