package pipeline

import (
	"context"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/fwojciec/curator"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/semaphore"
)

// Processing defaults.
const (
	DefaultProcessConcurrency = 4
	DefaultThreshold          = 0.7
	DefaultFallbackConfidence = 0.1
)

// FallbackWarning is attached to examples whose model call failed.
const FallbackWarning = "LLM processing failed - using original content"

// Processor cleans and scores examples through a curator.Enhancer. Its
// semaphore is independent of the fetch pool. A struct literal works, but
// its zero Threshold accepts every successful call; NewProcessor sets the
// defaults.
type Processor struct {
	Enhancer curator.Enhancer

	// Tokens, when set, rejects prompts above MaxPromptTokens without a
	// model call.
	Tokens          curator.TokenCounter
	MaxPromptTokens int

	Threshold          float64
	FallbackConfidence float64
	Backoff            Backoff
	Metrics            curator.Metrics
	Logger             *slog.Logger

	once   sync.Once
	sem    *semaphore.Weighted
	policy *bluemonday.Policy
}

// NewProcessor returns a Processor with default threshold, fallback
// confidence and retry policy, allowing concurrency calls in flight.
func NewProcessor(enhancer curator.Enhancer, concurrency int) *Processor {
	if concurrency <= 0 {
		concurrency = DefaultProcessConcurrency
	}
	return &Processor{
		Enhancer:           enhancer,
		Threshold:          DefaultThreshold,
		FallbackConfidence: DefaultFallbackConfidence,
		Backoff:            Backoff{Retries: 2, Base: DefaultBackoff().Base, Max: DefaultBackoff().Max},
		Metrics:            curator.NopMetrics{},
		Logger:             slog.New(slog.DiscardHandler),
		sem:                semaphore.NewWeighted(int64(concurrency)),
		policy:             bluemonday.StrictPolicy(),
	}
}

// init fills what a struct literal leaves unset.
func (p *Processor) init() {
	p.once.Do(func() {
		if p.sem == nil {
			p.sem = semaphore.NewWeighted(DefaultProcessConcurrency)
		}
		if p.policy == nil {
			p.policy = bluemonday.StrictPolicy()
		}
		if p.Metrics == nil {
			p.Metrics = curator.NopMetrics{}
		}
		if p.Logger == nil {
			p.Logger = slog.New(slog.DiscardHandler)
		}
	})
}

// ProcessAll processes examples concurrently and returns the completed
// results in input order. keys is parallel to examples. Examples still in
// flight when ctx is done are dropped, so a shorter slice is returned.
func (p *Processor) ProcessAll(ctx context.Context, examples []*curator.RawExample, keys []curator.CanonicalKey) []*curator.ProcessedExample {
	results, done := gather(ctx, len(examples), func(ctx context.Context, i int) *curator.ProcessedExample {
		ex, err := p.Process(ctx, examples[i], keys[i])
		if err != nil {
			return nil
		}
		return ex
	})

	out := make([]*curator.ProcessedExample, 0, len(results))
	for i, ex := range results {
		if done[i] && ex != nil {
			out = append(out, ex)
		}
	}
	return out
}

// Process cleans and scores one example. Model failures never surface as
// errors: they produce a fallback example. The only error is ctx's, when
// the call was abandoned.
func (p *Processor) Process(ctx context.Context, ex *curator.RawExample, key curator.CanonicalKey) (*curator.ProcessedExample, error) {
	p.init()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	resp, err := p.enhance(ctx, ex)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.Logger.Warn("processing failed", "key", key.Short(), "url", ex.SourceURL,
			"err", &curator.ProcessingError{Key: key, Err: err})
		out := p.fallback(ex, key)
		p.Metrics.IncExample(out.Status)
		return out, nil
	}

	out := p.accept(ex, key, resp)
	p.Metrics.IncExample(out.Status)
	return out, nil
}

func (p *Processor) enhance(ctx context.Context, ex *curator.RawExample) (*curator.EnhanceResponse, error) {
	if p.Enhancer == nil {
		return nil, curator.Errorf(curator.EUNAVAILABLE, "no enhancer configured")
	}

	req := &curator.EnhanceRequest{
		Package:     ex.Package,
		Title:       ex.Title,
		Description: ex.Description,
		Code:        ex.Code,
		SourceURL:   ex.SourceURL,
		Instruction: curator.EnhanceInstruction,
	}

	if p.Tokens != nil && p.MaxPromptTokens > 0 {
		n, err := p.Tokens.CountTokens(ctx, req.Description+"\n\n"+req.Code)
		if err != nil {
			return nil, err
		}
		if n > p.MaxPromptTokens {
			return nil, curator.Errorf(curator.EINVALID, "prompt has %d tokens, limit %d", n, p.MaxPromptTokens)
		}
	}

	return Retry(ctx, p.Backoff, retryableEnhance, p.Logger, "enhance "+ex.SourceURL,
		func(ctx context.Context) (*curator.EnhanceResponse, error) {
			resp, err := p.Enhancer.Enhance(ctx, req)
			if err != nil {
				return nil, err
			}
			if err := resp.Validate(); err != nil {
				return nil, err
			}
			return resp, nil
		})
}

// retryableEnhance retries everything except missing configuration.
func retryableEnhance(err error) bool {
	return curator.ErrorCode(err) != curator.EUNAVAILABLE
}

func (p *Processor) accept(ex *curator.RawExample, key curator.CanonicalKey, resp *curator.EnhanceResponse) *curator.ProcessedExample {
	code := stripFence(resp.Code)
	if strings.TrimSpace(code) == "" {
		code = ex.Code
	}
	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = ex.Title
	}
	desc := p.sanitize(resp.Description)
	if desc == "" {
		desc = p.sanitize(ex.Description)
	}
	category := normalizeCategory(resp.Category)
	if category == "" {
		category = curator.CategoryFromURL(ex.SourceURL)
	}

	confidence := resp.Confidence * ex.Prior
	status := curator.StatusRejected
	if confidence >= p.Threshold {
		status = curator.StatusSucceeded
	}

	return &curator.ProcessedExample{
		RawExample:       ex,
		Key:              key,
		Title:            title,
		CleanCode:        code,
		CleanDescription: desc,
		Confidence:       confidence,
		Status:           status,
		Dependencies:     curator.ExtractDependencies(code),
		Category:         category,
		Warnings:         nonEmpty(resp.Warnings),
	}
}

func (p *Processor) fallback(ex *curator.RawExample, key curator.CanonicalKey) *curator.ProcessedExample {
	return &curator.ProcessedExample{
		RawExample:       ex,
		Key:              key,
		Title:            ex.Title,
		CleanCode:        ex.Code,
		CleanDescription: p.sanitize(ex.Description),
		Confidence:       p.FallbackConfidence,
		Status:           curator.StatusFallback,
		Dependencies:     curator.ExtractDependencies(ex.Code),
		Category:         curator.CategoryFromURL(ex.SourceURL),
		Warnings:         []string{FallbackWarning},
	}
}

// sanitize strips markup from model or page text and restores entities
// escaped by the policy.
func (p *Processor) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(s)))
}

// stripFence removes a markdown code fence wrapped around the whole code.
func stripFence(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return code
	}
	body := strings.TrimSuffix(trimmed, "```")
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		return code
	}
	return strings.TrimRight(body, "\n")
}

func normalizeCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
