package mock

import (
	"context"

	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of pagewatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, e pagewatch.Event) error
}

func (n *Notifier) Notify(ctx context.Context, e pagewatch.Event) error {
	return n.NotifyFn(ctx, e)
}
