package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fwojciec/pagewatch"
	"go.uber.org/zap"
)

// Compile-time interface verification.
var (
	_ pagewatch.SnapshotCache   = (*SnapshotCache)(nil)
	_ pagewatch.SnapshotHistory = (*SnapshotCache)(nil)
)

// SnapshotCache keeps the most recent snapshots of each task in the snapshot
// table.
type SnapshotCache struct {
	db       *sql.DB
	versions int
	logger   *zap.SugaredLogger
}

// NewSnapshotCache creates a cache over db that retains versions snapshots
// per task. A depth below one is raised to one.
func NewSnapshotCache(db *sql.DB, versions int, logger *zap.SugaredLogger) *SnapshotCache {
	if versions < 1 {
		logger.Warnw("snapshot retention depth must be at least 1, using 1", "versions", versions)
		versions = 1
	}
	return &SnapshotCache{db: db, versions: versions, logger: logger}
}

var columns = []string{"task_name", "target_url", "content", "content_type", "fetched_at"}

// Latest returns the newest snapshot of the task, or nil if none is stored.
func (c *SnapshotCache) Latest(ctx context.Context, taskName string) (*pagewatch.Snapshot, error) {
	query, args, err := sq.
		Select(columns...).
		From("snapshot").
		Where(sq.Eq{"task_key": pagewatch.TaskKey(taskName)}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSnapshot(c.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot of %q: %w", taskName, err)
	}
	return s, nil
}

// Store saves s and prunes the task's snapshots beyond the retention depth in
// one transaction.
func (c *SnapshotCache) Store(ctx context.Context, s *pagewatch.Snapshot) error {
	key := pagewatch.TaskKey(s.TaskName)

	insert, insertArgs, err := sq.
		Insert("snapshot").
		Columns(append([]string{"task_key"}, columns...)...).
		Values(key, s.TaskName, s.TargetURL, s.Content, s.ContentType, s.FetchedAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return err
	}
	prune, pruneArgs, err := sq.
		Delete("snapshot").
		Where(sq.Eq{"task_key": key}).
		Where("id NOT IN (SELECT id FROM snapshot WHERE task_key = ? ORDER BY id DESC LIMIT ?)", key, c.versions).
		ToSql()
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("store snapshot of %q: %w", s.TaskName, err)
	}
	res, err := tx.ExecContext(ctx, prune, pruneArgs...)
	if err != nil {
		return fmt.Errorf("prune snapshots of %q: %w", s.TaskName, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debugw("pruned snapshots", "task", s.TaskName, "count", n)
	}
	return tx.Commit()
}

// Reset removes every stored snapshot of the task.
func (c *SnapshotCache) Reset(ctx context.Context, taskName string) error {
	query, args, err := sq.
		Delete("snapshot").
		Where(sq.Eq{"task_key": pagewatch.TaskKey(taskName)}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset snapshots of %q: %w", taskName, err)
	}
	c.logger.Infow("reset snapshot cache", "task", taskName)
	return nil
}

// History returns the stored snapshots of the task from oldest to newest.
func (c *SnapshotCache) History(ctx context.Context, taskName string) ([]*pagewatch.Snapshot, error) {
	query, args, err := sq.
		Select(columns...).
		From("snapshot").
		Where(sq.Eq{"task_key": pagewatch.TaskKey(taskName)}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*pagewatch.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, s)
	}
	return history, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*pagewatch.Snapshot, error) {
	var s pagewatch.Snapshot
	var fetchedAt string
	if err := row.Scan(&s.TaskName, &s.TargetURL, &s.Content, &s.ContentType, &fetchedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}
	s.FetchedAt = t
	return &s, nil
}
