package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fwojciec/pagewatch"
	"go.uber.org/zap"
)

// Compile-time interface verification.
var (
	_ pagewatch.SnapshotCache   = (*SnapshotCache)(nil)
	_ pagewatch.SnapshotHistory = (*SnapshotCache)(nil)
)

// SnapshotCache keeps the most recent snapshots of each task as JSON files
// under <root>/<task key>/<version>.json. The newest snapshot has the
// highest version; older ones shift down on every store and the oldest is
// dropped.
type SnapshotCache struct {
	root     string
	versions int
	logger   *zap.SugaredLogger

	mu sync.Mutex
}

// NewSnapshotCache creates a cache rooted at root that retains versions
// snapshots per task. A depth below one is raised to one.
func NewSnapshotCache(root string, versions int, logger *zap.SugaredLogger) *SnapshotCache {
	if versions < 1 {
		logger.Warnw("snapshot retention depth must be at least 1, using 1", "versions", versions)
		versions = 1
	}
	return &SnapshotCache{root: root, versions: versions, logger: logger}
}

// Latest returns the newest snapshot of the task, or nil if none is cached.
func (c *SnapshotCache) Latest(ctx context.Context, taskName string) (*pagewatch.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.load(c.versionPath(taskName, c.versions-1))
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Debugw("no cached snapshot", "task", taskName)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot of %q: %w", taskName, err)
	}
	return s, nil
}

// Store saves s as the newest snapshot of its task.
func (c *SnapshotCache) Store(ctx context.Context, s *pagewatch.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for v := 1; v < c.versions; v++ {
		err := os.Rename(c.versionPath(s.TaskName, v), c.versionPath(s.TaskName, v-1))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rotate snapshots of %q: %w", s.TaskName, err)
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(c.versionPath(s.TaskName, c.versions-1), data); err != nil {
		return fmt.Errorf("store snapshot of %q: %w", s.TaskName, err)
	}
	return nil
}

// Reset removes every cached snapshot of the task.
func (c *SnapshotCache) Reset(ctx context.Context, taskName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.taskDir(taskName)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		c.logger.Infow("snapshot cache already empty", "task", taskName)
		return nil
	}
	c.logger.Infow("resetting snapshot cache", "task", taskName, "dir", dir)
	return os.RemoveAll(dir)
}

// History returns the cached snapshots of the task from oldest to newest.
func (c *SnapshotCache) History(ctx context.Context, taskName string) ([]*pagewatch.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var history []*pagewatch.Snapshot
	for v := 0; v < c.versions; v++ {
		s, err := c.load(c.versionPath(taskName, v))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		history = append(history, s)
	}
	return history, nil
}

func (c *SnapshotCache) taskDir(taskName string) string {
	return filepath.Join(c.root, pagewatch.TaskKey(taskName))
}

func (c *SnapshotCache) versionPath(taskName string, v int) string {
	return filepath.Join(c.taskDir(taskName), strconv.Itoa(v)+".json")
}

func (c *SnapshotCache) load(path string) (*pagewatch.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s pagewatch.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
