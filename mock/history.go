package mock

import (
	"context"
	"time"

	"github.com/fwojciec/curator"
)

var _ curator.History = (*History)(nil)

// History is a mock implementation of curator.History.
type History struct {
	SnapshotFn      func(ctx context.Context) (*curator.Snapshot, error)
	LastPublishedFn func(ctx context.Context) (time.Time, error)
	RecordPublishFn func(ctx context.Context, rec *curator.PublishRecord) error
	PublishesFn     func(ctx context.Context, limit int) ([]*curator.PublishRecord, error)
}

func (h *History) Snapshot(ctx context.Context) (*curator.Snapshot, error) {
	return h.SnapshotFn(ctx)
}

func (h *History) LastPublished(ctx context.Context) (time.Time, error) {
	return h.LastPublishedFn(ctx)
}

func (h *History) RecordPublish(ctx context.Context, rec *curator.PublishRecord) error {
	return h.RecordPublishFn(ctx, rec)
}

func (h *History) Publishes(ctx context.Context, limit int) ([]*curator.PublishRecord, error) {
	return h.PublishesFn(ctx, limit)
}

var _ curator.Locker = (*Locker)(nil)

// Locker is a mock implementation of curator.Locker.
type Locker struct {
	LockFn func(ctx context.Context) (func() error, error)
}

func (l *Locker) Lock(ctx context.Context) (func() error, error) {
	return l.LockFn(ctx)
}

var _ curator.KeyFilter = (*KeyFilter)(nil)

// KeyFilter is a mock implementation of curator.KeyFilter.
type KeyFilter struct {
	AddFn  func(key string)
	TestFn func(key string) bool
}

func (f *KeyFilter) Add(key string) {
	f.AddFn(key)
}

func (f *KeyFilter) Test(key string) bool {
	return f.TestFn(key)
}

var _ curator.RegistrySource = (*RegistrySource)(nil)

// RegistrySource is a mock implementation of curator.RegistrySource.
type RegistrySource struct {
	LoadRegistryFn func(ctx context.Context) (*curator.Registry, error)
}

func (s *RegistrySource) LoadRegistry(ctx context.Context) (*curator.Registry, error) {
	return s.LoadRegistryFn(ctx)
}
