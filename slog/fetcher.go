package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/curator"
)

// Ensure LoggingFetcher implements curator.Fetcher.
var _ curator.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every attempt.
type LoggingFetcher struct {
	next   curator.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next curator.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (doc *curator.Document, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		if doc != nil {
			bytes, status = len(doc.Body), doc.Status
		}
		f.logger.Debug("fetch",
			"url", url,
			"status", status,
			"bytes", bytes,
			"transient", curator.IsTransient(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
