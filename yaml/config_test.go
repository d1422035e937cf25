package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/curator"
	curyaml "github.com/fwojciec/curator/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
packages:
  - name: sunpy
    docs_url: https://docs.sunpy.org
    family: sphinx-gallery
    patterns: ["/en/stable/generated/gallery/*/plot_*.html"]
    priority: 2
  - name: pysat
    docs_url: https://pysat.readthedocs.io
    family: reference
    patterns: ["/en/latest/examples.html"]
    render: true
fetch:
  concurrency: 2
  timeout: 10s
  render:
    recycle_after: 20
    settle: 2s
process:
  threshold: 0.8
  content_extractor: trafilatura
run:
  interval: 48h
gallery:
  dir: examples/auto
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads packages and tuning", func(t *testing.T) {
		t.Parallel()

		cfg, err := curyaml.LoadConfig(writeConfig(t, sampleConfig))

		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Fetch.Concurrency)
		assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 20, cfg.Fetch.Render.RecycleAfter)
		assert.Equal(t, 2*time.Second, cfg.Fetch.Render.Settle)
		assert.Equal(t, curyaml.DefaultReadySelector, cfg.Fetch.Render.ReadySelector)
		assert.Equal(t, curyaml.DefaultRenderTimeout, cfg.Fetch.Render.Timeout)
		assert.InDelta(t, 0.8, cfg.Process.Threshold, 1e-9)
		assert.Equal(t, curyaml.ExtractorTrafilatura, cfg.Process.ContentExtractor)
		assert.Equal(t, 48*time.Hour, cfg.Run.Interval)
		assert.Equal(t, "examples/auto", cfg.Gallery.Dir)

		reg, err := cfg.Registry()
		require.NoError(t, err)
		pkgs := reg.Packages()
		require.Len(t, pkgs, 2)
		assert.Equal(t, "sunpy", pkgs[0].Name)
		assert.Equal(t, curator.FamilyGallery, pkgs[0].Family)
		assert.True(t, pkgs[1].Render)
	})

	t.Run("fills defaults for missing values", func(t *testing.T) {
		t.Parallel()

		cfg, err := curyaml.LoadConfig(writeConfig(t, "fetch:\n  rps: 5\n"))

		require.NoError(t, err)
		assert.InDelta(t, 5.0, cfg.Fetch.RPS, 1e-9)
		assert.Equal(t, curyaml.DefaultFetchConcurrency, cfg.Fetch.Concurrency)
		assert.InDelta(t, curyaml.DefaultThreshold, cfg.Process.Threshold, 1e-9)
		assert.InDelta(t, curyaml.DefaultFallbackConfidence, cfg.Process.FallbackConfidence, 1e-9)
		assert.Equal(t, curyaml.ExtractorReadability, cfg.Process.ContentExtractor)
		assert.Equal(t, curyaml.DefaultInterval, cfg.Run.Interval)
		assert.Equal(t, curyaml.DefaultGalleryDir, cfg.Gallery.Dir)
	})

	t.Run("uses the built-in catalog without packages", func(t *testing.T) {
		t.Parallel()

		cfg, err := curyaml.LoadConfig(writeConfig(t, ""))
		require.NoError(t, err)

		reg, err := cfg.Registry()
		require.NoError(t, err)
		assert.Equal(t, len(curator.DefaultPackages()), reg.Len())
	})

	t.Run("returns EINVALID for a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := curyaml.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
	})

	invalid := map[string]string{
		"malformed yaml":               "packages: [",
		"unknown keys":                 "fetch:\n  workers: 3\n",
		"threshold above one":          "process:\n  threshold: 1.5\n",
		"fallback not below threshold": "process:\n  threshold: 0.5\n  fallback_confidence: 0.9\n",
		"unknown extractor":            "process:\n  content_extractor: boilerpipe\n",
		"absolute gallery dir":         "gallery:\n  dir: /srv/gallery\n",
		"escaping gallery dir":         "gallery:\n  dir: ../gallery\n",
		"negative concurrency":         "fetch:\n  concurrency: -1\n",
		"unknown family":               "packages:\n  - name: x\n    docs_url: https://x.org\n    family: wiki\n    patterns: [/a]\n",
		"duplicate packages":           "packages:\n  - {name: x, docs_url: https://x.org, family: reference, patterns: [/a]}\n  - {name: x, docs_url: https://y.org, family: reference, patterns: [/b]}\n",
		"package without url":          "packages:\n  - {name: x, family: reference, patterns: [/a]}\n",
		"bad duration":                 "run:\n  interval: weekly\n",
		"negative render settle":       "fetch:\n  render:\n    settle: -1s\n",
	}
	for name, content := range invalid {
		t.Run("rejects "+name, func(t *testing.T) {
			t.Parallel()

			_, err := curyaml.LoadConfig(writeConfig(t, content))

			assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := curyaml.DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, curyaml.DefaultRunTimeout, cfg.Run.Timeout)
}
