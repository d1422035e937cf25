// Package rod fetches pages that only render their examples after
// JavaScript runs, using a headless Chrome driven by go-rod.
package rod

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/curator"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements curator.Fetcher at compile time.
var _ curator.Fetcher = (*Fetcher)(nil)

// Render defaults.
const (
	DefaultFetchTimeout = 45 * time.Second
	DefaultSettle       = 5 * time.Second

	// DefaultReadySelector matches the code blocks of Sphinx and nbsphinx
	// pages once client-side rendering has produced them.
	DefaultReadySelector = "div[class*='highlight'] pre, div.nbinput pre"
)

// Fetcher retrieves rendered HTML using Chrome browser automation. After
// the load event it waits up to the settle time for a code block to
// appear, since galleries rendered client-side fill in their examples
// late. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browsers     *Browsers
	timeout      time.Duration
	recycleAfter int
	ready        string
	settle       time.Duration
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRecycleAfter sets how many pages are rendered before Chrome is
// replaced. Zero never recycles.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// WithReadySelector sets the selector awaited after the load event. An
// empty selector returns pages as soon as they load.
func WithReadySelector(sel string) Option {
	return func(f *Fetcher) {
		f.ready = sel
	}
}

// WithSettle bounds the wait for the ready selector.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// NewFetcher creates a Fetcher and launches its first Chrome. Close must
// be called when the Fetcher is no longer needed.
//
// Returns EUNAVAILABLE if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		recycleAfter: DefaultRecycleAfter,
		ready:        DefaultReadySelector,
		settle:       DefaultSettle,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.browsers = newBrowsers(f.recycleAfter, launchChrome)
	if err := f.browsers.start(); err != nil {
		return nil, curator.Errorf(curator.EUNAVAILABLE, "browser: %v", err)
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML. Render
// failures are transient; cancellation of ctx is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*curator.Document, error) {
	if f.closed.Load() {
		return nil, curator.Errorf(curator.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	br, release, err := f.browsers.lease()
	if errors.Is(err, errClosed) {
		return nil, curator.Errorf(curator.EINVALID, "fetcher is closed")
	}
	if err != nil {
		return nil, &curator.FetchError{URL: url, Transient: true, Err: err}
	}
	defer release()

	pageCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := br.rod.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &curator.FetchError{URL: url, Transient: true, Err: err}
	}
	defer func() { _ = page.Close() }()
	page = page.Context(pageCtx)

	fail := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if pageCtx.Err() != nil && !errors.Is(err, pageCtx.Err()) {
			err = pageCtx.Err()
		}
		return &curator.FetchError{URL: url, Transient: true, Err: err}
	}

	if err := page.Navigate(url); err != nil {
		return nil, fail(err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fail(err)
	}
	if err := f.awaitExamples(page); err != nil {
		return nil, fail(err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fail(err)
	}

	final := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		final = info.URL
	}

	return &curator.Document{
		URL:         final,
		Status:      http.StatusOK,
		ContentType: "text/html",
		Body:        html,
	}, nil
}

// awaitExamples waits up to the settle time for the ready selector. A page
// that never shows a match is returned as loaded; the extractor reports it
// as empty.
func (f *Fetcher) awaitExamples(page *rod.Page) error {
	if f.ready == "" || f.settle <= 0 {
		return nil
	}
	wait := page.Timeout(f.settle)
	defer wait.CancelTimeout()
	_, err := wait.Element(f.ready)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.browsers.Close()
}
