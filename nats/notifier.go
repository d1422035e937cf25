// Package nats announces finished runs on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/curator"
	"github.com/nats-io/nats.go"
)

// Ensure Notifier implements curator.Notifier at compile time.
var _ curator.Notifier = (*Notifier)(nil)

// DefaultSubject is the subject run events are published on.
const DefaultSubject = "curator.runs"

// Conn is the part of *nats.Conn the notifier uses.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// RunEvent is the message published for every finished run.
type RunEvent struct {
	RunID      string           `json:"runId"`
	Decision   curator.Decision `json:"decision"`
	State      curator.State    `json:"state"`
	DryRun     bool             `json:"dryRun"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Files      []string         `json:"files"`
	Summary    curator.Summary  `json:"summary"`
	Error      string           `json:"error,omitempty"`
}

// NewRunEvent builds the event for run.
func NewRunEvent(run *curator.RunState) *RunEvent {
	ev := &RunEvent{
		RunID:      run.ID,
		Decision:   run.Decision,
		State:      run.State,
		DryRun:     run.DryRun,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Files:      []string{},
		Summary:    run.Summary,
	}
	if run.Changeset != nil {
		for _, f := range run.Changeset.Files {
			ev.Files = append(ev.Files, f.Path)
		}
	}
	if run.Failure != nil {
		ev.Error = curator.ErrorMessage(run.Failure)
	}
	return ev
}

// Notifier publishes a RunEvent as JSON for every finished run.
type Notifier struct {
	conn    Conn
	subject string
}

// NewNotifier creates a Notifier publishing on subject. An empty subject
// uses DefaultSubject.
func NewNotifier(conn Conn, subject string) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{conn: conn, subject: subject}
}

// Connect dials the server at url and returns a Notifier along with the
// connection, which the caller must close.
func Connect(url, subject string) (*Notifier, *nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("curator"))
	if err != nil {
		return nil, nil, curator.Errorf(curator.EUNAVAILABLE, "failed to connect to NATS: %v", err)
	}
	return NewNotifier(conn, subject), conn, nil
}

// Notify implements curator.Notifier. It waits for the server to
// acknowledge the publish or for ctx to end.
func (n *Notifier) Notify(ctx context.Context, run *curator.RunState) error {
	data, err := json.Marshal(NewRunEvent(run))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return n.conn.FlushWithContext(ctx)
}
