package main

import (
	"context"
	"sync"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/rod"
)

// Ensure browserFetcher implements curator.Fetcher at compile time.
var _ curator.Fetcher = (*browserFetcher)(nil)

// browserFetcher starts Chrome on the first fetch, so runs whose registry
// has no render packages never launch it.
type browserFetcher struct {
	opts  []rod.Option
	start func(opts ...rod.Option) (curator.Fetcher, error)

	once    sync.Once
	fetcher curator.Fetcher
	err     error
}

func newBrowserFetcher(opts ...rod.Option) *browserFetcher {
	return &browserFetcher{
		opts: opts,
		start: func(opts ...rod.Option) (curator.Fetcher, error) {
			f, err := rod.NewFetcher(opts...)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// Fetch starts the browser if needed and fetches url through it. A browser
// that fails to start fails every fetch permanently.
func (b *browserFetcher) Fetch(ctx context.Context, url string) (*curator.Document, error) {
	b.once.Do(func() {
		b.fetcher, b.err = b.start(b.opts...)
	})
	if b.err != nil {
		return nil, &curator.FetchError{URL: url, Err: curator.Errorf(curator.EUNAVAILABLE, "failed to start browser (Chrome or Chromium must be installed): %v", b.err)}
	}
	return b.fetcher.Fetch(ctx, url)
}

// Close stops the browser if it was started.
func (b *browserFetcher) Close() error {
	var err error
	b.once.Do(func() {
		b.err = curator.Errorf(curator.EINVALID, "fetcher is closed")
	})
	if b.fetcher != nil {
		err = b.fetcher.Close()
	}
	return err
}
