// Package http provides an HTTP-based implementation of curator.Fetcher
// for documentation hosts that serve static pages and raw notebooks.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/curator"
)

// DefaultFetchTimeout is the default timeout for a single request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBytes caps the size of a response body.
const DefaultMaxBytes = 10 << 20

// DefaultUserAgent identifies the curator to documentation hosts.
const DefaultUserAgent = "curator/1.0 (+https://github.com/fwojciec/curator)"

// Ensure Fetcher implements curator.Fetcher at compile time.
var _ curator.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents using plain HTTP GET requests. It does not
// execute JavaScript; see rod.Fetcher for pages that need it.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBytes  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBytes caps the number of body bytes read per response.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch performs one GET request. Non-2xx responses and transport
// failures are returned as *curator.FetchError. Context cancellation is
// returned unwrapped so callers can stop retrying.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*curator.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &curator.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &curator.FetchError{URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &curator.FetchError{
			URL:       url,
			Status:    resp.StatusCode,
			Transient: IsTransientStatus(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &curator.FetchError{URL: url, Status: resp.StatusCode, Transient: true, Err: err}
	}

	return &curator.Document{
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
