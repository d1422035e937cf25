package nats_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/curator"
	curnats "github.com/fwojciec/curator/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	err      error
	flushErr error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	c.subject, c.data = subj, data
	return c.err
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	return c.flushErr
}

func TestNotifier_Notify(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	run := &curator.RunState{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(4 * time.Minute),
		Decision:   curator.DecisionPublish,
		State:      curator.StateIdle,
		Changeset: &curator.Changeset{Files: []curator.FileChange{
			{Path: "gallery/auto_a.py", Content: "a = 1\n"},
		}},
		Summary: curator.Summary{Packages: 5, Accepted: 1},
	}

	t.Run("publishes the run as JSON", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}

		err := curnats.NewNotifier(conn, "").Notify(context.Background(), run)

		require.NoError(t, err)
		assert.Equal(t, curnats.DefaultSubject, conn.subject)

		var ev curnats.RunEvent
		require.NoError(t, json.Unmarshal(conn.data, &ev))
		assert.Equal(t, "run-1", ev.RunID)
		assert.Equal(t, curator.DecisionPublish, ev.Decision)
		assert.Equal(t, []string{"gallery/auto_a.py"}, ev.Files)
		assert.Equal(t, 1, ev.Summary.Accepted)
		assert.Empty(t, ev.Error)
		assert.NotContains(t, string(conn.data), "a = 1")
	})

	t.Run("includes the failure message", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		failed := &curator.RunState{ID: "run-2", State: curator.StatePublishing, Failure: curator.Errorf(curator.EUNAVAILABLE, "disk full")}

		require.NoError(t, curnats.NewNotifier(conn, "gallery.runs").Notify(context.Background(), failed))

		var ev curnats.RunEvent
		require.NoError(t, json.Unmarshal(conn.data, &ev))
		assert.Equal(t, "gallery.runs", conn.subject)
		assert.Equal(t, "disk full", ev.Error)
		assert.Equal(t, []string{}, ev.Files)
	})

	t.Run("returns publish errors", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{err: errors.New("connection closed")}

		err := curnats.NewNotifier(conn, "").Notify(context.Background(), run)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	})

	t.Run("returns flush errors", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{flushErr: context.DeadlineExceeded}

		err := curnats.NewNotifier(conn, "").Notify(context.Background(), run)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
