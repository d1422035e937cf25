package mock

import (
	"context"

	"github.com/fwojciec/curator"
)

var _ curator.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of curator.Publisher.
type Publisher struct {
	PublishFn func(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) error
}

func (p *Publisher) Publish(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) error {
	return p.PublishFn(ctx, cs, summary)
}

var _ curator.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of curator.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, run *curator.RunState) error
}

func (n *Notifier) Notify(ctx context.Context, run *curator.RunState) error {
	return n.NotifyFn(ctx, run)
}
