package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fwojciec/pagewatch"
	"go.uber.org/zap"
)

// Compile-time interface verification.
var _ pagewatch.Notifier = (*Outbox)(nil)

// Outbox writes an HTML email document for every detected change into a
// directory, where a mail transfer agent or a person can pick it up.
type Outbox struct {
	dir      string
	renderer pagewatch.Renderer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewOutbox creates an Outbox writing documents rendered by r into dir.
func NewOutbox(dir string, r pagewatch.Renderer, logger *zap.SugaredLogger) *Outbox {
	return &Outbox{dir: dir, renderer: r, logger: logger, now: time.Now}
}

// Notify writes the rendered change to <dir>/<task key>-<unix nanos>.html.
// Write failures are logged and not returned.
func (o *Outbox) Notify(ctx context.Context, e pagewatch.Event) error {
	if e.Comparison.Status != pagewatch.StatusChanged {
		return nil
	}
	doc, err := pagewatch.RenderWithFallback(o.renderer, &pagewatch.PlainTextRenderer{}, e.Delta())
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%d.html", pagewatch.TaskKey(e.Task.DisplayName()), o.now().UnixNano())
	path := filepath.Join(o.dir, name)
	if err := writeFileAtomic(path, []byte(doc)); err != nil {
		o.logger.Errorw("failed to write email", "task", e.Task.DisplayName(), "path", path, "error", err)
		return nil
	}
	o.logger.Infow("email written", "task", e.Task.DisplayName(), "round_id", e.RoundID, "path", path)
	return nil
}
