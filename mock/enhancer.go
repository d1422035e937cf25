package mock

import (
	"context"

	"github.com/fwojciec/curator"
)

var _ curator.Enhancer = (*Enhancer)(nil)

// Enhancer is a mock implementation of curator.Enhancer.
type Enhancer struct {
	EnhanceFn func(ctx context.Context, req *curator.EnhanceRequest) (*curator.EnhanceResponse, error)
}

func (e *Enhancer) Enhance(ctx context.Context, req *curator.EnhanceRequest) (*curator.EnhanceResponse, error) {
	return e.EnhanceFn(ctx, req)
}

var _ curator.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of curator.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
