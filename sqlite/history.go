package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/curator"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ curator.History = (*History)(nil)

// History implements curator.History using SQLite.
type History struct {
	db        *DB
	newFilter func(n int) curator.KeyFilter
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithKeyFilter backs every snapshot with a filter sized for its key count,
// such as bloom.NewSnapshotFilter.
func WithKeyFilter(newFilter func(n int) curator.KeyFilter) HistoryOption {
	return func(h *History) {
		h.newFilter = newFilter
	}
}

// NewHistory creates a new History.
func NewHistory(db *DB, opts ...HistoryOption) *History {
	h := &History{db: db}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Snapshot returns every key published so far. The version is the number
// of recorded publishes.
func (h *History) Snapshot(ctx context.Context) (*curator.Snapshot, error) {
	var version int64
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM publishes`).Scan(&version); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx, `SELECT key FROM published_examples`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []curator.CanonicalKey
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, curator.CanonicalKey(key))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var filter curator.KeyFilter
	if h.newFilter != nil {
		filter = h.newFilter(len(keys))
	}
	return curator.NewSnapshot(version, keys, filter), nil
}

// LastPublished returns the time of the most recent publish, or the zero
// time when the history is empty.
func (h *History) LastPublished(ctx context.Context) (time.Time, error) {
	var publishedAt string
	err := h.db.QueryRowContext(ctx, `
		SELECT published_at FROM publishes
		ORDER BY published_at DESC
		LIMIT 1
	`).Scan(&publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseRFC3339(publishedAt, "published_at")
}

// RecordPublish stores a publish and its examples in one transaction. Keys
// that are already recorded keep their first publish.
func (h *History) RecordPublish(ctx context.Context, rec *curator.PublishRecord) error {
	if rec == nil {
		return curator.Errorf(curator.EINVALID, "publish record required")
	}
	if rec.PublishedAt.IsZero() {
		return curator.Errorf(curator.EINVALID, "publish time required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO publishes (id, run_id, published_at)
		VALUES (?, ?, ?)
	`, rec.ID, rec.RunID, formatTime(rec.PublishedAt)); err != nil {
		return fmt.Errorf("insert publish: %w", err)
	}

	for _, ex := range rec.Examples {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO published_examples (key, publish_id, package, source_url, path)
			VALUES (?, ?, ?, ?, ?)
		`, string(ex.Key), rec.ID, ex.Package, ex.SourceURL, ex.Path); err != nil {
			return fmt.Errorf("insert example %s: %w", ex.Key.Short(), err)
		}
	}

	return tx.Commit()
}

// Publishes returns the most recent publishes, newest first, with their
// examples. A limit of zero returns all of them.
func (h *History) Publishes(ctx context.Context, limit int) ([]*curator.PublishRecord, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, run_id, published_at FROM publishes ORDER BY published_at DESC, rowid DESC`)
	var args []any
	appendPagination(&query, &args, limit, 0)

	rows, err := h.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*curator.PublishRecord{}
	for rows.Next() {
		var rec curator.PublishRecord
		var publishedAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &publishedAt); err != nil {
			return nil, err
		}
		if rec.PublishedAt, err = parseRFC3339(publishedAt, "published_at"); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, rec := range records {
		if rec.Examples, err = h.examples(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (h *History) examples(ctx context.Context, publishID string) ([]curator.PublishedExample, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT key, package, source_url, path
		FROM published_examples
		WHERE publish_id = ?
		ORDER BY rowid
	`, publishID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []curator.PublishedExample
	for rows.Next() {
		var ex curator.PublishedExample
		var key string
		if err := rows.Scan(&key, &ex.Package, &ex.SourceURL, &ex.Path); err != nil {
			return nil, err
		}
		ex.Key = curator.CanonicalKey(key)
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}
