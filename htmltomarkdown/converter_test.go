package htmltomarkdown_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements curator.Converter at compile time.
var _ curator.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Quickstart</h1><p>Load a CDF file.</p><h2>Reading data</h2>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Quickstart")
		assert.Contains(t, md, "Load a CDF file.")
		assert.Contains(t, md, "## Reading data")
	})

	t.Run("keeps explicit language hints", func(t *testing.T) {
		t.Parallel()

		html := `<pre><code class="language-python">import spacepy.pycdf
cdf = spacepy.pycdf.CDF("data.cdf")
</code></pre>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```python\nimport spacepy.pycdf\ncdf = spacepy.pycdf.CDF(\"data.cdf\")\n```")
	})

	t.Run("tags sphinx highlighted blocks", func(t *testing.T) {
		t.Parallel()

		html := `<div class="highlight-python notranslate"><div class="highlight"><pre><span></span><span class="kn">import</span> <span class="nn">pysat</span>
</pre></div></div>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```python\nimport pysat\n```")
	})

	t.Run("tags ipython console blocks", func(t *testing.T) {
		t.Parallel()

		html := `<div class="highlight-ipython3 notranslate"><div class="highlight"><pre>x = 1</pre></div></div>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```ipython3\nx = 1\n```")
	})

	t.Run("leaves default highlighting untagged", func(t *testing.T) {
		t.Parallel()

		html := `<div class="highlight-default notranslate"><div class="highlight"><pre>x = 1</pre></div></div>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```\nx = 1\n```")
	})

	t.Run("marks unhighlighted output as text", func(t *testing.T) {
		t.Parallel()

		html := `<div class="highlight-none notranslate"><div class="highlight"><pre>array([1, 2])</pre></div></div>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```text\narray([1, 2])\n```")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Instrument</th><th>Cadence</th></tr></thead>
<tbody><tr><td>AIA</td><td>12s</td></tr></tbody>
</table>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Instrument")
		assert.Contains(t, md, "AIA")
		assert.Contains(t, md, "|")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("  ")

		require.Error(t, err)
		assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
	})
}

func TestTagCodeLanguages(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
<div class="highlight-pycon"><pre id="a">&gt;&gt;&gt; 1</pre></div>
<pre id="b" class="language-bash">ls</pre>
<pre id="c">plain</pre>`))
	require.NoError(t, err)

	htmltomarkdown.TagCodeLanguages(doc.Selection)

	assert.True(t, doc.Find("#a").HasClass("language-pycon"))
	assert.Equal(t, "language-bash", doc.Find("#b").AttrOr("class", ""))
	assert.Equal(t, "", doc.Find("#c").AttrOr("class", ""))
}
