package zap

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/pagewatch"
	"go.uber.org/zap"
)

// Compile-time interface verification.
var _ pagewatch.Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier logs the outcome of every round and prints the rendered
// delta of detected changes.
type ConsoleNotifier struct {
	logger   *zap.SugaredLogger
	renderer pagewatch.Renderer
	out      io.Writer
}

// NewConsoleNotifier creates a ConsoleNotifier printing deltas rendered by r
// to out. Deltas fall back to plain text when r cannot render.
func NewConsoleNotifier(logger *zap.SugaredLogger, r pagewatch.Renderer, out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger, renderer: r, out: out}
}

// Notify logs the status label of the round.
func (n *ConsoleNotifier) Notify(ctx context.Context, e pagewatch.Event) error {
	n.logger.Infow(e.Comparison.Label(),
		"task", e.Task.DisplayName(),
		"round", e.Round,
		"round_id", e.RoundID,
		"status", e.Comparison.Status.String(),
	)
	if e.Comparison.Status != pagewatch.StatusChanged {
		return nil
	}

	delta, err := pagewatch.RenderWithFallback(n.renderer, &pagewatch.PlainTextRenderer{}, e.Delta())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(n.out, delta); err != nil {
		n.logger.Errorw("failed to print delta", "task", e.Task.DisplayName(), "error", err)
	}
	return nil
}
