package curator_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractors_Extract(t *testing.T) {
	t.Parallel()

	pkg := validPackage()
	doc := &curator.Document{URL: "https://docs.sunpy.org/page.html", Body: "<html></html>"}

	named := func(name string) *mock.Extractor {
		return &mock.Extractor{
			ExtractFn: func(*curator.Package, *curator.Document) ([]*curator.RawExample, error) {
				return []*curator.RawExample{{Title: name}}, nil
			},
		}
	}

	t.Run("dispatches by family", func(t *testing.T) {
		t.Parallel()

		x := &curator.Extractors{Gallery: named("gallery"), Notebook: named("notebook"), Reference: named("reference")}

		for _, f := range []curator.DocFamily{curator.FamilyGallery, curator.FamilyNotebook, curator.FamilyReference} {
			got, err := x.Extract(f, pkg, doc)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, f.String(), got[0].Title)
		}
	})

	t.Run("wraps extractor errors", func(t *testing.T) {
		t.Parallel()

		x := &curator.Extractors{Gallery: &mock.Extractor{
			ExtractFn: func(*curator.Package, *curator.Document) ([]*curator.RawExample, error) {
				return []*curator.RawExample{{}}, errors.New("no article body")
			},
		}}

		got, err := x.Extract(curator.FamilyGallery, pkg, doc)

		assert.Nil(t, got)
		var ee *curator.ExtractionError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, doc.URL, ee.URL)
		assert.Equal(t, curator.FamilyGallery, ee.Family)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		t.Parallel()

		x := &curator.Extractors{Notebook: &mock.Extractor{
			ExtractFn: func(*curator.Package, *curator.Document) ([]*curator.RawExample, error) {
				panic("index out of range")
			},
		}}

		got, err := x.Extract(curator.FamilyNotebook, pkg, doc)

		assert.Nil(t, got)
		var ee *curator.ExtractionError
		require.ErrorAs(t, err, &ee)
		assert.Contains(t, ee.Error(), "index out of range")
	})

	t.Run("reports a missing extractor", func(t *testing.T) {
		t.Parallel()

		x := &curator.Extractors{}

		_, err := x.Extract(curator.FamilyReference, pkg, doc)
		assert.Equal(t, curator.EINVALID, curator.ErrorCode(err))
	})
}
