package curator_test

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/fwojciec/curator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirements(t *testing.T) {
	t.Parallel()

	examples := []*curator.ProcessedExample{
		{Status: curator.StatusSucceeded, Dependencies: []string{"sunpy", "numpy", "requests"}},
		{Status: curator.StatusFallback, Dependencies: []string{"scipy"}},
		{Status: curator.StatusSucceeded, Dependencies: []string{"Astropy", "numpy"}},
	}

	assert.Equal(t, []string{"astropy", "numpy", "sunpy"}, curator.Requirements(examples))
}

func TestMergeRequirements(t *testing.T) {
	t.Parallel()

	t.Run("appends missing packages", func(t *testing.T) {
		t.Parallel()

		got, changed := curator.MergeRequirements("numpy==1.26.4\n", []string{"numpy", "sunpy"})

		assert.True(t, changed)
		assert.Equal(t, "numpy==1.26.4\nsunpy\n", got)
	})

	t.Run("treats pinned and extra entries as present", func(t *testing.T) {
		t.Parallel()

		existing := "# pinned\n-r base.txt\nSunPy[all] >= 6.0\nastropy~=6.1 ; python_version > '3.9'\n"

		got, changed := curator.MergeRequirements(existing, []string{"astropy", "sunpy"})

		assert.False(t, changed)
		assert.Equal(t, existing, got)
	})
}

func TestAddGalleryNotice(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)

	once, changed := curator.AddGalleryNotice("Gallery\n", day, 3)
	require.True(t, changed)
	assert.Contains(t, once, "# Automated Examples")
	assert.Contains(t, once, "Examples updated in this run: 3")

	twice, changed := curator.AddGalleryNotice(once, day.AddDate(0, 0, 7), 5)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestSupplement(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	files := map[string]string{
		"requirements.txt":   "numpy\n",
		"gallery/README.txt": "Gallery\n",
	}
	read := func(p string) ([]byte, error) {
		content, ok := files[p]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return []byte(content), nil
	}

	t.Run("adds requirements and readme updates", func(t *testing.T) {
		t.Parallel()

		cs := &curator.Changeset{
			Files:        []curator.FileChange{{Path: "gallery/auto_a.py", Key: "k1"}},
			Dir:          "gallery",
			Requirements: []string{"sunpy"},
		}

		out, err := curator.Supplement(cs, read, day)

		require.NoError(t, err)
		require.Len(t, out.Files, 3)
		assert.Equal(t, curator.FileChange{Path: "requirements.txt", Content: "numpy\nsunpy\n"}, out.Files[1])
		assert.Equal(t, "gallery/README.txt", out.Files[2].Path)
		assert.Len(t, cs.Files, 1)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		cs := &curator.Changeset{
			Files:        []curator.FileChange{{Path: "gallery/auto_a.py", Key: "k1"}},
			Dir:          "gallery",
			Requirements: []string{"sunpy"},
		}
		once, err := curator.Supplement(cs, read, day)
		require.NoError(t, err)

		twice, err := curator.Supplement(once, read, day)

		require.NoError(t, err)
		assert.Equal(t, once.Files, twice.Files)
	})

	t.Run("skips files that do not exist", func(t *testing.T) {
		t.Parallel()

		cs := &curator.Changeset{
			Files:        []curator.FileChange{{Path: "docs/auto_a.py", Key: "k1"}},
			Dir:          "docs",
			Requirements: []string{"numpy"},
		}

		out, err := curator.Supplement(cs, read, day)

		require.NoError(t, err)
		assert.Len(t, out.Files, 1)
	})

	t.Run("returns read errors", func(t *testing.T) {
		t.Parallel()

		cs := &curator.Changeset{
			Files:        []curator.FileChange{{Path: "gallery/auto_a.py", Key: "k1"}},
			Requirements: []string{"numpy"},
		}
		boom := errors.New("permission denied")

		_, err := curator.Supplement(cs, func(string) ([]byte, error) { return nil, boom }, day)

		assert.ErrorIs(t, err, boom)
	})
}
