// Package gocron runs the pipeline on a fixed interval.
package gocron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/curator"
	"github.com/go-co-op/gocron/v2"
)

// Runner executes one run.
type Runner interface {
	Run(ctx context.Context, opts curator.RunOptions) (*curator.RunState, error)
}

// Scheduler ticks a Runner every interval. Ticks that arrive while a run
// is still in flight are dropped, so runs never overlap. The cadence gate
// still decides whether a tick publishes anything.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	// AfterRun, when set, is called with every finished run.
	AfterRun func(run *curator.RunState, err error)

	scheduler gocron.Scheduler

	mu   sync.RWMutex
	last *curator.RunState
	runs int
}

// NewScheduler creates a Scheduler. It does not start ticking until Start.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, curator.Errorf(curator.EINVALID, "schedule interval must be positive")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{
		runner:    runner,
		interval:  interval,
		logger:    logger,
		scheduler: s,
	}, nil
}

// Start schedules the run job, fires it once immediately and begins
// ticking. Runs use ctx, so cancelling it aborts the run in flight.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.tick(ctx) }),
		gocron.WithName("curator-run"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule run: %w", err)
	}
	s.logger.Info("starting scheduler", "every", s.interval)
	s.scheduler.Start()
	return nil
}

// Stop waits for the run in flight and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("stopping scheduler")
	return s.scheduler.Shutdown()
}

// Last returns the most recent finished run, or nil before the first one
// finishes.
func (s *Scheduler) Last() *curator.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Runs returns the number of finished runs.
func (s *Scheduler) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	run, err := s.runner.Run(ctx, curator.RunOptions{})
	if err != nil {
		s.logger.Error("scheduled run failed", "err", err)
	}
	s.mu.Lock()
	s.last = run
	s.runs++
	s.mu.Unlock()
	if s.AfterRun != nil {
		s.AfterRun(run, err)
	}
}
