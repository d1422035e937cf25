package curator

import "context"

// Fetcher retrieves a raw document from a URL.
type Fetcher interface {
	// Fetch performs a single retrieval attempt. Failures are reported as
	// *FetchError so callers can tell transient from permanent ones.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Document, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
