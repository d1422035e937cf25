// Package bloom provides a probabilistic prefilter for published canonical
// keys.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/curator"
)

// Ensure Filter implements curator.KeyFilter at compile time.
var _ curator.KeyFilter = (*Filter)(nil)

// DefaultFalsePositiveRate is the rate used by NewSnapshotFilter.
const DefaultFalsePositiveRate = 0.001

// minCapacity keeps filters for small histories from degenerating.
const minCapacity = 1024

// Filter wraps a Bloom filter over canonical keys.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewSnapshotFilter returns a filter sized for a history of n keys with
// headroom for one more run.
func NewSnapshotFilter(n int) curator.KeyFilter {
	capacity := uint(2 * n)
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return NewFilter(capacity, DefaultFalsePositiveRate)
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
