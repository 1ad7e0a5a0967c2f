package mock

import (
	"context"

	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.SnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache is a mock implementation of pagewatch.SnapshotCache.
type SnapshotCache struct {
	LatestFn func(ctx context.Context, taskName string) (*pagewatch.Snapshot, error)
	StoreFn  func(ctx context.Context, s *pagewatch.Snapshot) error
	ResetFn  func(ctx context.Context, taskName string) error
}

func (c *SnapshotCache) Latest(ctx context.Context, taskName string) (*pagewatch.Snapshot, error) {
	return c.LatestFn(ctx, taskName)
}

func (c *SnapshotCache) Store(ctx context.Context, s *pagewatch.Snapshot) error {
	return c.StoreFn(ctx, s)
}

func (c *SnapshotCache) Reset(ctx context.Context, taskName string) error {
	return c.ResetFn(ctx, taskName)
}
