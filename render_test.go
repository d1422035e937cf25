package curator_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/curator"
	"github.com/stretchr/testify/assert"
)

func processedExample() *curator.ProcessedExample {
	return &curator.ProcessedExample{
		RawExample: &curator.RawExample{
			Package:   "sunpy",
			SourceURL: "https://docs.sunpy.org/en/stable/generated/gallery/map/plot_aia.html",
			Title:     "raw title",
			Code:      "raw code",
			Family:    curator.FamilyGallery,
			Prior:     1,
		},
		Key:              curator.CanonicalKey("0123456789abcdef"),
		Title:            "Plotting an AIA Map",
		CleanCode:        "import sunpy.map\nm = sunpy.map.Map(path)\nm.peek()\n\n",
		CleanDescription: "Load and display an AIA image.",
		Confidence:       0.9,
		Status:           curator.StatusSucceeded,
		Dependencies:     []string{"sunpy"},
		Category:         "maps",
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("renders a gallery file", func(t *testing.T) {
		t.Parallel()

		got := curator.Render(processedExample())

		want := `# coding: utf-8
"""
Plotting an AIA Map
========================================

Load and display an AIA image.

Source: https://docs.sunpy.org/en/stable/generated/gallery/map/plot_aia.html
Package: sunpy
Category: maps
Dependencies: sunpy
Processing confidence: 0.90
"""

` + strings.Repeat("#", 78) + `
import sunpy.map
m = sunpy.map.Map(path)
m.peek()
`
		assert.Equal(t, want, got)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, curator.Render(processedExample()), curator.Render(processedExample()))
	})

	t.Run("lists warnings", func(t *testing.T) {
		t.Parallel()

		ex := processedExample()
		ex.Warnings = []string{"requires network access", "uses deprecated\nAPI"}

		got := curator.Render(ex)

		assert.Contains(t, got, "Warnings:\n- requires network access\n- uses deprecated API\n")
	})

	t.Run("escapes docstring terminators", func(t *testing.T) {
		t.Parallel()

		ex := processedExample()
		ex.CleanDescription = `Ends with """ quotes`

		got := curator.Render(ex)

		assert.Contains(t, got, "Ends with ''' quotes")
		assert.Equal(t, 2, strings.Count(got, `"""`))
	})

	t.Run("widens the title rule for long titles", func(t *testing.T) {
		t.Parallel()

		ex := processedExample()
		ex.Title = strings.Repeat("t", 50)

		got := curator.Render(ex)

		assert.Contains(t, got, "\n"+strings.Repeat("=", 54)+"\n")
	})
}

func TestGalleryPath(t *testing.T) {
	t.Parallel()

	got := curator.GalleryPath("gallery/auto", processedExample())

	assert.Equal(t, "gallery/auto/auto_sunpy_plotting_an_aia_map_01234567.py", got)
}
