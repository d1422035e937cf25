package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fwojciec/curator"
	"golang.org/x/sync/semaphore"
)

// DefaultFetchConcurrency is the number of requests allowed in flight
// across all packages.
const DefaultFetchConcurrency = 8

// Fetch results reported to curator.Metrics.
const (
	FetchOK        = "ok"
	FetchRetried   = "retried"
	FetchTransient = "transient"
	FetchPermanent = "permanent"
)

// Ensure FetchPool implements curator.Fetcher at compile time.
var _ curator.Fetcher = (*FetchPool)(nil)

// FetchPool bounds, throttles and retries fetches. Every view returned by
// With shares the same admission semaphore, so the bound holds across
// packages and fetcher kinds.
type FetchPool struct {
	fetcher curator.Fetcher
	sem     *semaphore.Weighted
	limiter curator.DomainLimiter
	backoff Backoff
	metrics curator.Metrics
	logger  *slog.Logger
}

// PoolOption configures a FetchPool.
type PoolOption func(*FetchPool)

// WithLimiter sets the per-host rate limiter.
func WithLimiter(l curator.DomainLimiter) PoolOption {
	return func(p *FetchPool) { p.limiter = l }
}

// WithBackoff sets the retry schedule for transient failures.
func WithBackoff(b Backoff) PoolOption {
	return func(p *FetchPool) { p.backoff = b }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m curator.Metrics) PoolOption {
	return func(p *FetchPool) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *FetchPool) { p.logger = l }
}

// NewFetchPool wraps fetcher with a semaphore of the given weight.
func NewFetchPool(fetcher curator.Fetcher, concurrency int, opts ...PoolOption) *FetchPool {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	p := &FetchPool{
		fetcher: fetcher,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		backoff: DefaultBackoff(),
		metrics: curator.NopMetrics{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With returns a view of the pool that fetches through f while sharing
// the semaphore, limiter and retry policy.
func (p *FetchPool) With(f curator.Fetcher) *FetchPool {
	view := *p
	view.fetcher = f
	return &view
}

// Fetch retrieves url. Transient failures are retried with backoff;
// permanent ones are returned at once. The slot is held only while a
// request is in flight, never during backoff.
func (p *FetchPool) Fetch(ctx context.Context, url string) (*curator.Document, error) {
	attempts := 0
	doc, err := Retry(ctx, p.backoff, curator.IsTransient, p.logger, "fetch "+url,
		func(ctx context.Context) (*curator.Document, error) {
			attempts++
			return p.fetchOnce(ctx, url)
		})

	switch {
	case err == nil && attempts > 1:
		p.metrics.IncFetch(FetchRetried)
	case err == nil:
		p.metrics.IncFetch(FetchOK)
	case curator.IsTransient(err):
		p.metrics.IncFetch(FetchTransient)
	case ctx.Err() == nil:
		p.metrics.IncFetch(FetchPermanent)
	}
	return doc, err
}

func (p *FetchPool) fetchOnce(ctx context.Context, url string) (*curator.Document, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, hostOf(url)); err != nil {
			return nil, err
		}
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		var fe *curator.FetchError
		if !errors.As(err, &fe) && ctx.Err() == nil {
			err = &curator.FetchError{URL: url, Transient: true, Err: err}
		}
		return nil, err
	}
	return doc, nil
}

// Close closes the underlying fetcher.
func (p *FetchPool) Close() error {
	return p.fetcher.Close()
}
