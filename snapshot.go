package curator

import "sort"

// KeyFilter is a probabilistic set used to skip exact lookups for keys
// that were certainly never published.
type KeyFilter interface {
	Add(key string)
	Test(key string) bool
}

// Snapshot is the read-only set of keys published by earlier runs, as of a
// given history version. A nil Snapshot is empty.
type Snapshot struct {
	Version int64

	keys   map[CanonicalKey]struct{}
	filter KeyFilter
}

// NewSnapshot builds a snapshot. filter may be nil.
func NewSnapshot(version int64, keys []CanonicalKey, filter KeyFilter) *Snapshot {
	s := &Snapshot{
		Version: version,
		keys:    make(map[CanonicalKey]struct{}, len(keys)),
		filter:  filter,
	}
	for _, k := range keys {
		s.keys[k] = struct{}{}
		if filter != nil {
			filter.Add(string(k))
		}
	}
	return s
}

// Contains reports whether key was published before.
func (s *Snapshot) Contains(key CanonicalKey) bool {
	if s == nil {
		return false
	}
	if s.filter != nil && !s.filter.Test(string(key)) {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of keys.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in sorted order.
func (s *Snapshot) Keys() []CanonicalKey {
	if s == nil {
		return nil
	}
	keys := make([]CanonicalKey, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
