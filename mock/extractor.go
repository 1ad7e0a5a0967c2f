package mock

import (
	"context"

	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pagewatch.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, task pagewatch.Task) (*pagewatch.Snapshot, error)
}

func (e *Extractor) Extract(ctx context.Context, task pagewatch.Task) (*pagewatch.Snapshot, error) {
	return e.ExtractFn(ctx, task)
}
