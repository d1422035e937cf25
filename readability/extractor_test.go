package readability_test

import (
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referencePage = `<!DOCTYPE html>
<html>
<head>
<title>pysat.Instrument &#8212; pysat documentation</title>
<meta name="description" content="Loading data with pysat instruments.">
</head>
<body>
<nav class="wy-nav-side"><ul><li><a href="/">Home</a></li><li><a href="/api">API</a></li></ul></nav>
<div class="document">
<div itemprop="articleBody">
<h1>Instrument</h1>
<p>The Instrument object is the primary interface for loading data. It handles
file management, metadata and the custom functions attached to each data set.</p>
<p>Instantiate an instrument by platform and name, then load a day of data.
The data are then available as a pandas DataFrame through the data attribute.</p>
<div class="highlight-python notranslate"><div class="highlight"><pre>import pysat
inst = pysat.Instrument('pysat', 'testing')
inst.load(2009, 1)
</pre></div></div>
<p>Loaded data can be sliced by time or by variable name. Metadata travel with
the data and are updated automatically when variables are added.</p>
</div>
</div>
<footer>Copyright 2024 pysat developers. Built with Sphinx.</footer>
</body>
</html>`

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("  ")

	require.Error(t, err)
	assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body><article><p>Content</p></article></body>
</html>`

	ext := readability.NewExtractor()
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Equal(t, "Page Title", result.Title)
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("keeps the article and drops navigation", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(referencePage)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "primary interface for loading data")
		assert.NotContains(t, result.ContentHTML, "wy-nav-side")
	})

	t.Run("keeps highlight classes on code blocks", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(referencePage)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "highlight-python")
		assert.Contains(t, result.ContentHTML, "pysat.Instrument(")
	})

	t.Run("uses the meta description as excerpt", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(referencePage)

		require.NoError(t, err)
		assert.Equal(t, "Loading data with pysat instruments.", result.Description)
	})
}
