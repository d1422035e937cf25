package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/curator"
	curchi "github.com/fwojciec/curator/chi"
	curgocron "github.com/fwojciec/curator/gocron"
	curyaml "github.com/fwojciec/curator/yaml"
)

// shutdownTimeout bounds the graceful stop of the status server.
const shutdownTimeout = 10 * time.Second

// Run executes the schedule command. It blocks until the context is
// cancelled.
func (c *ScheduleCmd) Run(deps *Dependencies) error {
	logger := deps.Logger

	scheduler, err := curgocron.NewScheduler(deps.Runner, c.Every, logger)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", curator.ErrorMessage(err))
		return err
	}

	// Only the registry is reloaded; tuning changes need a restart.
	if deps.Source != nil {
		if err := curyaml.Watch(deps.Ctx, deps.ConfigPath, curyaml.DefaultDebounce, func() {
			logger.Info("config changed, registry reloads before the next run", "path", deps.ConfigPath)
			deps.Source.Invalidate()
		}, logger); err != nil {
			logger.Warn("config watch disabled", "err", err)
		}
	}

	var metrics http.Handler
	if deps.Metrics != nil {
		metrics = deps.Metrics.Handler()
	}
	srv := curchi.NewServer(c.Listen, scheduler, metrics)
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("status server listening", "addr", c.Listen)

	if err := scheduler.Start(deps.Ctx); err != nil {
		return err
	}

	select {
	case <-deps.Ctx.Done():
	case err = <-errc:
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: status server: %v\n", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(ctx); serr != nil {
		logger.Error("status server shutdown", "err", serr)
	}
	if serr := scheduler.Stop(); serr != nil {
		logger.Error("scheduler shutdown", "err", serr)
	}
	return err
}
