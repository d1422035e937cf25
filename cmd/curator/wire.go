package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/bloom"
	curfs "github.com/fwojciec/curator/fs"
	"github.com/fwojciec/curator/gemini"
	curgit "github.com/fwojciec/curator/git"
	"github.com/fwojciec/curator/goldmark"
	curgoquery "github.com/fwojciec/curator/goquery"
	"github.com/fwojciec/curator/htmltomarkdown"
	curhttp "github.com/fwojciec/curator/http"
	curnats "github.com/fwojciec/curator/nats"
	"github.com/fwojciec/curator/pipeline"
	curprom "github.com/fwojciec/curator/prometheus"
	"github.com/fwojciec/curator/readability"
	"github.com/fwojciec/curator/rod"
	curslog "github.com/fwojciec/curator/slog"
	"github.com/fwojciec/curator/trafilatura"
	curyaml "github.com/fwojciec/curator/yaml"
	"google.golang.org/genai"
)

// tokenizerModel is used for prompt budgeting. The local tokenizer does
// not know every generation model.
const tokenizerModel = "gemini-2.5-flash"

func newKeyFilter(n int) curator.KeyFilter {
	return bloom.NewSnapshotFilter(n)
}

// wire builds the orchestrator for run and schedule.
func (m *Main) wire(deps *Dependencies, out *OutputFlags) error {
	cfg := deps.Config
	logger := deps.Logger

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(deps.Stderr, "Hint: Get an API key at https://aistudio.google.com/apikey")
		return curator.Errorf(curator.EINVALID, "GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(deps.Ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return curator.Errorf(curator.EUNAVAILABLE, "failed to connect to Gemini API: %v", err)
	}

	deps.Metrics = curprom.NewRecorder(nil)

	fetchOpts := []curhttp.Option{curhttp.WithTimeout(cfg.Fetch.Timeout)}
	if cfg.Fetch.UserAgent != "" {
		fetchOpts = append(fetchOpts, curhttp.WithUserAgent(cfg.Fetch.UserAgent))
	}
	backoff := pipeline.DefaultBackoff()
	backoff.Retries = cfg.Fetch.Retries
	pool := pipeline.NewFetchPool(
		curslog.NewLoggingFetcher(curhttp.NewFetcher(fetchOpts...), logger),
		cfg.Fetch.Concurrency,
		pipeline.WithLimiter(pipeline.NewDomainLimiter(cfg.Fetch.RPS)),
		pipeline.WithBackoff(backoff),
		pipeline.WithMetrics(deps.Metrics),
		pipeline.WithLogger(logger),
	)
	m.onClose(pool.Close)
	browser := newBrowserFetcher(
		rod.WithFetchTimeout(cfg.Fetch.Render.Timeout),
		rod.WithRecycleAfter(cfg.Fetch.Render.RecycleAfter),
		rod.WithReadySelector(cfg.Fetch.Render.ReadySelector),
		rod.WithSettle(cfg.Fetch.Render.Settle),
	)
	m.onClose(browser.Close)

	var content curator.ContentExtractor
	switch cfg.Process.ContentExtractor {
	case curyaml.ExtractorTrafilatura:
		content = trafilatura.NewExtractor()
	default:
		content = readability.NewExtractor()
	}

	processor := pipeline.NewProcessor(
		curslog.NewLoggingEnhancer(gemini.NewEnhancer(client, cfg.Process.Model), logger),
		cfg.Process.Concurrency,
	)
	processor.Threshold = cfg.Process.Threshold
	processor.FallbackConfidence = cfg.Process.FallbackConfidence
	processor.Backoff.Retries = cfg.Process.Retries
	processor.Metrics = deps.Metrics
	processor.Logger = logger
	if cfg.Process.MaxPromptTokens > 0 {
		tokens, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		processor.Tokens = tokens
		processor.MaxPromptTokens = cfg.Process.MaxPromptTokens
	}

	publisher, err := newPublisher(out)
	if err != nil {
		return err
	}

	var notifiers []curator.Notifier
	if out.NATSURL != "" {
		notifier, conn, err := curnats.Connect(out.NATSURL, out.NATSSubject)
		if err != nil {
			return err
		}
		m.onClose(func() error { conn.Close(); return nil })
		notifiers = append(notifiers, notifier)
	}

	lockPath := out.Lock
	if lockPath == "" {
		lockPath = filepath.Join(filepath.Dir(deps.DBPath), "curator.lock")
	}

	deps.Runner = &pipeline.Orchestrator{
		Registry: deps.Registry,
		Fetch:    pool,
		Render:   pool.With(browser),
		Discoverer: &pipeline.Discoverer{
			Sitemaps: curslog.NewLoggingSitemapService(curhttp.NewSitemapService(pool), logger),
			Links:    curgoquery.NewLinkExtractor(),
			MaxPages: cfg.Fetch.MaxPages,
			Logger:   logger,
		},
		Extractors: &curator.Extractors{
			Gallery:   curgoquery.NewGalleryExtractor(),
			Notebook:  curgoquery.NewNotebookExtractor(),
			Reference: goldmark.NewReferenceExtractor(content, htmltomarkdown.NewConverter()),
		},
		Processor:  processor,
		History:    deps.History,
		Locker:     curfs.NewLock(lockPath),
		Publisher:  curslog.NewLoggingPublisher(publisher, logger),
		Notifiers:  notifiers,
		Metrics:    deps.Metrics,
		Logger:     logger,
		GalleryDir: cfg.Gallery.Dir,
		Interval:   cfg.Run.Interval,
		Timeout:    cfg.Run.Timeout,
	}
	return nil
}

// newPublisher commits to a git work tree when --repo is set and writes
// into --out otherwise.
func newPublisher(out *OutputFlags) (curator.Publisher, error) {
	if out.Repo != "" {
		pub := curgit.NewPublisher(out.Repo)
		pub.Writer = curfs.NewSink(out.Repo)
		return pub, nil
	}
	if err := os.MkdirAll(out.Out, 0o755); err != nil {
		return nil, curator.Errorf(curator.EINVALID, "failed to create output directory %q: %v", out.Out, err)
	}
	return curfs.NewSink(out.Out), nil
}
