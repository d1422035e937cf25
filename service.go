package curator

import (
	"context"
	"time"
)

// PublishedExample is one example as recorded in the history.
type PublishedExample struct {
	Key       CanonicalKey
	Package   string
	SourceURL string
	Path      string
}

// PublishRecord describes a successful publish.
type PublishRecord struct {
	ID          string
	RunID       string
	PublishedAt time.Time
	Examples    []PublishedExample
}

// History persists what earlier runs published.
type History interface {
	// Snapshot returns the keys published so far.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// LastPublished returns the time of the most recent publish, or the
	// zero time if nothing was ever published.
	LastPublished(ctx context.Context) (time.Time, error)

	// RecordPublish adds a publish and its keys to the history.
	RecordPublish(ctx context.Context, rec *PublishRecord) error

	// Publishes returns the most recent publishes, newest first.
	Publishes(ctx context.Context, limit int) ([]*PublishRecord, error)
}

// Locker guards against concurrent runs.
type Locker interface {
	// Lock acquires the run lock or returns ECONFLICT if another run holds
	// it. The returned function releases the lock.
	Lock(ctx context.Context) (unlock func() error, err error)
}

// Publisher hands a changeset to a reviewable destination.
type Publisher interface {
	// Publish writes every file of the changeset or none of them.
	Publish(ctx context.Context, cs *Changeset, summary *Summary) error
}

// Notifier is told about finished runs. Failures are logged, not fatal.
type Notifier interface {
	Notify(ctx context.Context, run *RunState) error
}

// Metrics records run telemetry.
type Metrics interface {
	ObserveStage(stage State, d time.Duration)
	IncFetch(result string)
	IncExample(status Status)
	IncRun(decision Decision, failed bool)
}

// NopMetrics discards all telemetry.
type NopMetrics struct{}

func (NopMetrics) ObserveStage(State, time.Duration) {}
func (NopMetrics) IncFetch(string)                   {}
func (NopMetrics) IncExample(Status)                 {}
func (NopMetrics) IncRun(Decision, bool)             {}
