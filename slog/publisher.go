package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/curator"
)

// Ensure LoggingPublisher implements curator.Publisher.
var _ curator.Publisher = (*LoggingPublisher)(nil)

// LoggingPublisher wraps a Publisher with logging.
type LoggingPublisher struct {
	next   curator.Publisher
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(next curator.Publisher, logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger}
}

// Publish delegates to the wrapped publisher and logs the changeset size.
func (p *LoggingPublisher) Publish(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("publish",
			"files", cs.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Publish(ctx, cs, summary)
}
