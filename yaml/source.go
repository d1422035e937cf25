package yaml

import (
	"context"
	"sync"

	"github.com/fwojciec/curator"
)

// Ensure Source implements curator.RegistrySource at compile time.
var _ curator.RegistrySource = (*Source)(nil)

// Source loads the registry from a config file and keeps it until
// Invalidate is called.
type Source struct {
	path string

	mu       sync.Mutex
	registry *curator.Registry
}

// NewSource returns a Source reading path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// LoadRegistry implements curator.RegistrySource. A file that fails to
// load is not cached, so the next call reads it again.
func (s *Source) LoadRegistry(ctx context.Context) (*curator.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry != nil {
		return s.registry, nil
	}
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	s.registry = reg
	return reg, nil
}

// Invalidate drops the cached registry.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.registry = nil
	s.mu.Unlock()
}
