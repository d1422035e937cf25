package curator_test

import (
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawExample(pkg, code string) *curator.RawExample {
	return &curator.RawExample{Package: pkg, SourceURL: "https://example.com/" + pkg, Code: code, Family: curator.FamilyGallery, Prior: 1}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	t.Run("keeps the first occurrence within a run", func(t *testing.T) {
		t.Parallel()

		first := rawExample("sunpy", "x = 1")
		dup := rawExample("plasmapy", "x  =  1  # same")
		other := rawExample("plasmapy", "y = 2")

		res := curator.Dedupe([]*curator.RawExample{first, dup, other}, nil)

		require.Len(t, res.Examples, 2)
		assert.Same(t, first, res.Examples[0])
		assert.Same(t, other, res.Examples[1])
		assert.Equal(t, []curator.CanonicalKey{curator.KeyOf("x = 1"), curator.KeyOf("y = 2")}, res.Keys)
		assert.Equal(t, 1, res.Dropped)
	})

	t.Run("drops previously published keys", func(t *testing.T) {
		t.Parallel()

		seen := curator.NewSnapshot(3, []curator.CanonicalKey{curator.KeyOf("x = 1")}, nil)

		res := curator.Dedupe([]*curator.RawExample{rawExample("a", "x = 1"), rawExample("a", "z = 3")}, seen)

		require.Len(t, res.Examples, 1)
		assert.Equal(t, "z = 3", res.Examples[0].Code)
		assert.Equal(t, 1, res.Dropped)
	})

	t.Run("returns nothing for empty input", func(t *testing.T) {
		t.Parallel()

		res := curator.Dedupe(nil, nil)
		assert.Empty(t, res.Examples)
		assert.Zero(t, res.Dropped)
	})
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("nil snapshot is empty", func(t *testing.T) {
		t.Parallel()

		var s *curator.Snapshot
		assert.False(t, s.Contains("abc"))
		assert.Zero(t, s.Len())
		assert.Nil(t, s.Keys())
	})

	t.Run("filter negatives skip the exact lookup", func(t *testing.T) {
		t.Parallel()

		added := map[string]bool{}
		filter := &mock.KeyFilter{
			AddFn:  func(key string) { added[key] = true },
			TestFn: func(key string) bool { return false },
		}

		s := curator.NewSnapshot(1, []curator.CanonicalKey{"k1"}, filter)

		assert.True(t, added["k1"])
		assert.False(t, s.Contains("k1"), "a filter negative is authoritative")
	})

	t.Run("filter positives are confirmed exactly", func(t *testing.T) {
		t.Parallel()

		filter := &mock.KeyFilter{
			AddFn:  func(string) {},
			TestFn: func(string) bool { return true },
		}

		s := curator.NewSnapshot(1, []curator.CanonicalKey{"k1"}, filter)

		assert.True(t, s.Contains("k1"))
		assert.False(t, s.Contains("k2"))
	})

	t.Run("returns sorted keys", func(t *testing.T) {
		t.Parallel()

		s := curator.NewSnapshot(2, []curator.CanonicalKey{"b", "a", "c"}, nil)
		assert.Equal(t, []curator.CanonicalKey{"a", "b", "c"}, s.Keys())
		assert.Equal(t, int64(2), s.Version)
	})
}
