package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Backoff describes a bounded exponential retry schedule with full jitter.
type Backoff struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// Base is the delay ceiling before the first retry; it doubles per attempt.
	Base time.Duration
	// Max caps the delay ceiling.
	Max time.Duration
}

// DefaultBackoff retries three times with ceilings of 1s, 2s, 4s.
func DefaultBackoff() Backoff {
	return Backoff{Retries: 3, Base: time.Second, Max: 8 * time.Second}
}

// NoDelay retries without sleeping. Useful in tests.
func NoDelay(retries int) Backoff {
	return Backoff{Retries: retries}
}

// Delay returns the jittered delay before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	ceiling := b.Base << attempt
	if ceiling <= 0 || (b.Max > 0 && ceiling > b.Max) {
		ceiling = b.Max
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}

// Retry calls fn until it succeeds, returns an error that retryable
// rejects, or the retries are exhausted. The last error is returned.
// Context cancellation stops the loop immediately.
func Retry[T any](
	ctx context.Context,
	b Backoff,
	retryable func(error) bool,
	logger *slog.Logger,
	op string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= b.Retries; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == b.Retries || (retryable != nil && !retryable(err)) {
			break
		}

		delay := b.Delay(attempt)
		if logger != nil {
			logger.Debug("retry", "op", op, "attempt", attempt+2, "delay", delay, "err", err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
