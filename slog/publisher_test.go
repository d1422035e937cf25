package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/mock"
	curslog "github.com/fwojciec/curator/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPublisher_Publish(t *testing.T) {
	t.Parallel()

	t.Run("logs the number of files", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var published *curator.Changeset
		inner := &mock.Publisher{
			PublishFn: func(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) error {
				published = cs
				return nil
			},
		}
		cs := &curator.Changeset{Files: []curator.FileChange{{Path: "a.py"}, {Path: "b.py"}}}

		err := curslog.NewLoggingPublisher(inner, slog.New(slog.NewTextHandler(&buf, nil))).Publish(context.Background(), cs, &curator.Summary{})

		require.NoError(t, err)
		assert.Same(t, cs, published)
		assert.Contains(t, buf.String(), "publish")
		assert.Contains(t, buf.String(), "files=2")
	})
}
