package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pagewatch"
	"github.com/fwojciec/pagewatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCache(t *testing.T, versions int) *sqlite.SnapshotCache {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewSnapshotCache(db, versions, zap.NewNop().Sugar())
}

func snapshot(task, content string) *pagewatch.Snapshot {
	return &pagewatch.Snapshot{
		TaskName:    task,
		TargetURL:   "https://example.com",
		Content:     content,
		ContentType: "JSON",
		FetchedAt:   time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC),
	}
}

func TestSnapshotCache_Latest(t *testing.T) {
	t.Parallel()

	t.Run("returns nil before the first store", func(t *testing.T) {
		t.Parallel()

		s, err := newCache(t, 3).Latest(context.Background(), "prices")

		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("returns the newest stored snapshot", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, 3)
		ctx := context.Background()
		require.NoError(t, cache.Store(ctx, snapshot("prices", "one")))
		require.NoError(t, cache.Store(ctx, snapshot("prices", "two")))
		require.NoError(t, cache.Store(ctx, snapshot("stock", "three")))

		s, err := cache.Latest(ctx, "prices")

		require.NoError(t, err)
		assert.Equal(t, snapshot("prices", "two"), s)
	})
}

func TestSnapshotCache_Store(t *testing.T) {
	t.Parallel()

	t.Run("prunes beyond the retention depth", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, 2)
		ctx := context.Background()
		for _, c := range []string{"a", "b", "c", "d"} {
			require.NoError(t, cache.Store(ctx, snapshot("prices", c)))
		}
		require.NoError(t, cache.Store(ctx, snapshot("stock", "x")))

		history, err := cache.History(ctx, "prices")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "c", history[0].Content)
		assert.Equal(t, "d", history[1].Content)

		other, err := cache.History(ctx, "stock")
		require.NoError(t, err)
		assert.Len(t, other, 1)
	})

	t.Run("raises a depth below one", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, 0)
		ctx := context.Background()
		require.NoError(t, cache.Store(ctx, snapshot("prices", "a")))
		require.NoError(t, cache.Store(ctx, snapshot("prices", "b")))

		history, err := cache.History(ctx, "prices")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "b", history[0].Content)
	})
}

func TestSnapshotCache_Reset(t *testing.T) {
	t.Parallel()

	cache := newCache(t, 3)
	ctx := context.Background()
	require.NoError(t, cache.Store(ctx, snapshot("prices", "a")))
	require.NoError(t, cache.Store(ctx, snapshot("stock", "b")))

	require.NoError(t, cache.Reset(ctx, "prices"))

	s, err := cache.Latest(ctx, "prices")
	require.NoError(t, err)
	assert.Nil(t, s)
	s, err = cache.Latest(ctx, "stock")
	require.NoError(t, err)
	assert.NotNil(t, s)
}
