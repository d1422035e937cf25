// Package pipeline runs the curation pipeline: discovery and fetching
// through a shared pool, per-family extraction, deduplication, model
// processing, rendering and the publication gate.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/curator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the minimum time between publishes.
const DefaultInterval = 7 * 24 * time.Hour

// Orchestrator drives one run through the state machine. It holds no
// per-run state, so a single Orchestrator may serve consecutive runs.
type Orchestrator struct {
	Registry   curator.RegistrySource
	Fetch      *FetchPool
	Render     *FetchPool // for packages that need JavaScript; Fetch if nil
	Discoverer *Discoverer
	Extractors *curator.Extractors
	Processor  *Processor
	History    curator.History
	Locker     curator.Locker
	Publisher  curator.Publisher
	Notifiers  []curator.Notifier
	Metrics    curator.Metrics
	Logger     *slog.Logger

	// GalleryDir is the directory, relative to the publish root, that
	// rendered files are placed in.
	GalleryDir string

	// Interval is the cadence gate; zero means DefaultInterval.
	Interval time.Duration

	// Timeout bounds the fetch and processing work of a run. Zero
	// disables it.
	Timeout time.Duration

	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o *Orchestrator) metrics() curator.Metrics {
	if o.Metrics != nil {
		return o.Metrics
	}
	return curator.NopMetrics{}
}

// Run executes one run. The returned RunState is never nil. A non-nil
// error means the run failed fatally; RunState.Failure holds the same
// error and RunState.State the state it failed in.
func (o *Orchestrator) Run(ctx context.Context, opts curator.RunOptions) (*curator.RunState, error) {
	run := &curator.RunState{
		ID:        uuid.NewString(),
		StartedAt: o.now(),
		DryRun:    opts.DryRun,
		Force:     opts.Force,
	}
	run.Enter(curator.StateIdle)
	logger := o.logger().With("run", run.ID)

	unlock, err := o.Locker.Lock(ctx)
	if err != nil {
		run.Failure = err
		run.FinishedAt = o.now()
		o.metrics().IncRun("", true)
		return run, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Error("release run lock", "err", err)
		}
	}()

	err = o.run(ctx, run, logger)
	run.FinishedAt = o.now()
	if err != nil {
		run.Failure = err
		logger.Error("run failed", "state", run.State, "err", err)
	} else {
		run.Enter(curator.StateIdle)
		logger.Info("run finished", "decision", run.Decision, "files", run.Changeset.Len(),
			"duration", run.FinishedAt.Sub(run.StartedAt))
	}
	o.metrics().IncRun(run.Decision, err != nil)
	o.notify(ctx, run, logger)
	return run, err
}

func (o *Orchestrator) run(ctx context.Context, run *curator.RunState, logger *slog.Logger) error {
	run.Enter(curator.StateScheduled)
	if !run.Force {
		last, err := o.History.LastPublished(ctx)
		if err != nil {
			return err
		}
		interval := o.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		if !last.IsZero() && o.now().Sub(last) < interval {
			logger.Info("cadence gate closed", "lastPublished", last, "interval", interval)
			run.Enter(curator.StateNoOp)
			run.Decision = curator.DecisionNoOp
			return nil
		}
	}

	reg, err := o.Registry.LoadRegistry(ctx)
	if err != nil {
		return err
	}
	seen, err := o.History.Snapshot(ctx)
	if err != nil {
		return err
	}
	run.Seen = seen
	pkgs := reg.Packages()
	run.Summary.Packages = len(pkgs)

	workCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		workCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	// Fetching.
	var fetched []*packagePages
	if err := o.stage(run, curator.StateFetching, func() error {
		fetched, err = o.fetchAll(workCtx, pkgs, logger)
		return err
	}); err != nil {
		return err
	}
	if err := o.checkTimeout(ctx, workCtx, run); err != nil {
		return err
	}
	for _, pp := range fetched {
		run.Summary.PagesDiscovered += pp.discovered
		run.Summary.PagesFetched += len(pp.pages)
		run.Summary.FetchFailures = append(run.Summary.FetchFailures, pp.failures...)
	}

	// Extracting, in registry order, page order and in-page order.
	var raw []*curator.RawExample
	_ = o.stage(run, curator.StateExtracting, func() error {
		for _, pp := range fetched {
			raw = append(raw, o.extractPackage(pp, &run.Summary, logger)...)
		}
		run.Summary.Extracted = len(raw)
		return nil
	})

	// Deduplicating.
	var deduped curator.DedupeResult
	_ = o.stage(run, curator.StateDeduplicating, func() error {
		deduped = curator.Dedupe(raw, seen)
		run.Summary.Duplicates = deduped.Dropped
		return nil
	})

	// Processing.
	_ = o.stage(run, curator.StateProcessing, func() error {
		run.Examples = o.Processor.ProcessAll(workCtx, deduped.Examples, deduped.Keys)
		run.Summary.Tally(run.Examples)
		return nil
	})
	if err := o.checkTimeout(ctx, workCtx, run); err != nil {
		return err
	}

	// Rendering.
	_ = o.stage(run, curator.StateRendering, func() error {
		run.Changeset = o.render(run.Examples)
		return nil
	})

	// Gating.
	run.Enter(curator.StateGating)
	if run.Changeset.Len() == 0 || run.DryRun {
		logger.Info("no publish", "files", run.Changeset.Len(), "dryRun", run.DryRun)
		run.Enter(curator.StateNoOp)
		run.Decision = curator.DecisionNoOp
		return nil
	}

	return o.stage(run, curator.StatePublishing, func() error {
		if err := o.Publisher.Publish(ctx, run.Changeset, &run.Summary); err != nil {
			return err
		}
		rec := &curator.PublishRecord{
			ID:          uuid.NewString(),
			RunID:       run.ID,
			PublishedAt: o.now(),
		}
		for _, f := range run.Changeset.Files {
			rec.Examples = append(rec.Examples, curator.PublishedExample{
				Key:       f.Key,
				Package:   f.Package,
				SourceURL: f.SourceURL,
				Path:      f.Path,
			})
		}
		if err := o.History.RecordPublish(ctx, rec); err != nil {
			return err
		}
		run.Decision = curator.DecisionPublish
		return nil
	})
}

// stage enters state, runs fn and records its duration.
func (o *Orchestrator) stage(run *curator.RunState, state curator.State, fn func() error) error {
	run.Enter(state)
	begin := time.Now()
	err := fn()
	o.metrics().ObserveStage(state, time.Since(begin))
	return err
}

// checkTimeout marks the run as timed out when the work context expired.
// Cancellation of the run itself is fatal.
func (o *Orchestrator) checkTimeout(ctx, workCtx context.Context, run *curator.RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if errors.Is(workCtx.Err(), context.DeadlineExceeded) && !run.Summary.TimedOut {
		run.Summary.TimedOut = true
		o.logger().Warn("run timeout reached, continuing with completed work", "run", run.ID, "state", run.State)
	}
	return nil
}

// packagePages is the fetch buffer of one package.
type packagePages struct {
	pkg        *curator.Package
	pages      []*curator.Document
	failures   []curator.FetchFailure
	discovered int
}

// fetchAll fetches every package concurrently through the shared pool and
// returns the buffers in registry order.
func (o *Orchestrator) fetchAll(ctx context.Context, pkgs []*curator.Package, logger *slog.Logger) ([]*packagePages, error) {
	out := make([]*packagePages, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		g.Go(func() error {
			out[i] = o.fetchPackage(gctx, pkg, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) fetcherFor(pkg *curator.Package) *FetchPool {
	if pkg.Render && o.Render != nil {
		return o.Render
	}
	return o.Fetch
}

// fetchPackage fetches the literal pages of pkg, expands its glob patterns
// from them and fetches the matches. Pages keep discovery order; failures
// are recorded, never returned.
func (o *Orchestrator) fetchPackage(ctx context.Context, pkg *curator.Package, logger *slog.Logger) *packagePages {
	pp := &packagePages{pkg: pkg}
	pool := o.fetcherFor(pkg)

	literal := LiteralPages(pkg)
	index := o.fetchPages(ctx, pool, pkg, literal, pp)

	var expanded []string
	if o.Discoverer != nil && ctx.Err() == nil {
		var err error
		expanded, err = o.Discoverer.Expand(ctx, pkg, index)
		if err != nil {
			logger.Warn("discovery abandoned", "package", pkg.Name, "err", err)
		}
	}
	o.fetchPages(ctx, pool, pkg, expanded, pp)

	pp.discovered = len(literal) + len(expanded)
	return pp
}

// fetchPages fetches urls concurrently and appends the documents to pp in
// url order. Pages unfinished when ctx is done, and fetches that failed
// only because of it, are dropped silently.
func (o *Orchestrator) fetchPages(ctx context.Context, pool *FetchPool, pkg *curator.Package, urls []string, pp *packagePages) []*curator.Document {
	type result struct {
		doc *curator.Document
		err error
	}
	results, done := gather(ctx, len(urls), func(ctx context.Context, i int) result {
		doc, err := pool.Fetch(ctx, urls[i])
		return result{doc: doc, err: err}
	})

	var docs []*curator.Document
	for i, r := range results {
		if !done[i] {
			continue
		}
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				continue
			}
			pp.failures = append(pp.failures, fetchFailure(pkg.Name, urls[i], r.err))
			continue
		}
		docs = append(docs, r.doc)
	}
	pp.pages = append(pp.pages, docs...)
	return docs
}

func fetchFailure(pkg, url string, err error) curator.FetchFailure {
	f := curator.FetchFailure{Package: pkg, URL: url, Message: err.Error()}
	var fe *curator.FetchError
	if errors.As(err, &fe) {
		f.Status = fe.Status
		f.Transient = fe.Transient
	}
	return f
}

// extractPackage runs the family extractor over every fetched page.
func (o *Orchestrator) extractPackage(pp *packagePages, summary *curator.Summary, logger *slog.Logger) []*curator.RawExample {
	var out []*curator.RawExample
	for _, doc := range pp.pages {
		examples, err := o.Extractors.Extract(pp.pkg.Family, pp.pkg, doc)
		if err != nil {
			logger.Warn("extraction failed", "package", pp.pkg.Name, "url", doc.URL, "err", err)
			summary.EmptyPages = append(summary.EmptyPages, curator.PageFailure{
				Package: pp.pkg.Name, URL: doc.URL, Reason: err.Error(),
			})
			continue
		}
		if len(examples) == 0 {
			summary.EmptyPages = append(summary.EmptyPages, curator.PageFailure{
				Package: pp.pkg.Name, URL: doc.URL, Reason: "no examples extracted",
			})
			continue
		}
		out = append(out, examples...)
	}
	return out
}

// render turns accepted examples into the changeset, in example order.
func (o *Orchestrator) render(examples []*curator.ProcessedExample) *curator.Changeset {
	cs := &curator.Changeset{
		Dir:          o.GalleryDir,
		Requirements: curator.Requirements(examples),
	}
	for _, ex := range examples {
		if !ex.Accepted() {
			continue
		}
		cs.Files = append(cs.Files, curator.FileChange{
			Path:      curator.GalleryPath(o.GalleryDir, ex),
			Content:   curator.Render(ex),
			Key:       ex.Key,
			Package:   ex.Package,
			SourceURL: ex.SourceURL,
		})
	}
	return cs
}

// notify tells every notifier about the finished run. Failures are logged.
func (o *Orchestrator) notify(ctx context.Context, run *curator.RunState, logger *slog.Logger) {
	for _, n := range o.Notifiers {
		if err := n.Notify(ctx, run); err != nil {
			logger.Warn("notify failed", "err", err)
		}
	}
}
