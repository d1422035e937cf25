package mock

import (
	"context"

	"github.com/fwojciec/curator"
)

var _ curator.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of curator.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*curator.Document, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*curator.Document, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ curator.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of curator.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
