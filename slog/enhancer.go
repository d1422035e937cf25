package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/curator"
)

// Ensure LoggingEnhancer implements curator.Enhancer.
var _ curator.Enhancer = (*LoggingEnhancer)(nil)

// LoggingEnhancer wraps an Enhancer with logging of every model call.
type LoggingEnhancer struct {
	next   curator.Enhancer
	logger *slog.Logger
}

// NewLoggingEnhancer creates a new LoggingEnhancer.
func NewLoggingEnhancer(next curator.Enhancer, logger *slog.Logger) *LoggingEnhancer {
	return &LoggingEnhancer{next: next, logger: logger}
}

// Enhance delegates to the wrapped enhancer and logs the outcome.
func (e *LoggingEnhancer) Enhance(ctx context.Context, req *curator.EnhanceRequest) (resp *curator.EnhanceResponse, err error) {
	defer func(begin time.Time) {
		var confidence float64
		if resp != nil {
			confidence = resp.Confidence
		}
		e.logger.Info("enhance",
			"package", req.Package,
			"title", req.Title,
			"confidence", confidence,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Enhance(ctx, req)
}
