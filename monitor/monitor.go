// Package monitor schedules monitoring rounds for tasks and dispatches their
// outcomes to notifiers.
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/pagewatch"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Runner runs monitoring rounds for a set of tasks concurrently.
type Runner struct {
	Extractor pagewatch.Extractor
	Cache     pagewatch.SnapshotCache
	Comparer  *pagewatch.Comparer
	Notifiers []pagewatch.Notifier
	Logger    *zap.SugaredLogger

	// Workers limits how many tasks run at once. Zero means no limit.
	Workers int

	// NewRoundID generates round identifiers. Defaults to random UUIDs.
	NewRoundID func() string
}

// Run runs every task until it has completed its rounds or ctx is cancelled.
// Failures to extract, load or store a snapshot skip the round. An invalid
// alignment stops all tasks and is returned.
func (r *Runner) Run(ctx context.Context, tasks []pagewatch.Task) error {
	if len(tasks) == 0 {
		return pagewatch.ErrNoTasks
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}
	for _, task := range tasks {
		g.Go(func() error {
			return r.RunTask(ctx, task)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// RunTask runs the rounds of one task, paced by the task interval.
func (r *Runner) RunTask(ctx context.Context, task pagewatch.Task) error {
	logger := r.Logger.With("task", task.DisplayName())
	if task.Interval < pagewatch.MinInterval {
		logger.Warnw("interval is shorter than the recommended minimum, the target may block requests",
			"interval", task.Interval, "minimum", pagewatch.MinInterval)
	}
	if task.ResetCache {
		if err := r.Cache.Reset(ctx, task.DisplayName()); err != nil {
			return fmt.Errorf("reset cache of %q: %w", task.DisplayName(), err)
		}
	}

	limiter := rate.NewLimiter(rate.Every(task.Interval), 1)
	for round := 1; task.MaxRounds == 0 || round <= task.MaxRounds; round++ {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := r.Round(ctx, task, round); err != nil {
			return err
		}
	}
	logger.Infow("task finished", "rounds", task.MaxRounds)
	return nil
}

// Round extracts the current snapshot, compares it with the cached one,
// stores it and notifies every notifier. Only an invalid alignment or a
// cancelled context is returned as an error.
func (r *Runner) Round(ctx context.Context, task pagewatch.Task, round int) error {
	id := r.roundID()
	name := task.DisplayName()
	logger := r.Logger.With("task", name, "round", round, "round_id", id)

	snapshot, err := r.Extractor.Extract(ctx, task)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Errorw("extraction failed, skipping round", "error", err)
		return nil
	}

	previous, err := r.Cache.Latest(ctx, name)
	if err != nil {
		logger.Errorw("loading cached snapshot failed, skipping round", "error", err)
		return nil
	}

	var prevContent *string
	if previous != nil {
		prevContent = &previous.Content
	}
	comparison := r.Comparer.Compare(prevContent, snapshot.Content)
	if comparison.Alignment != nil {
		if err := comparison.Alignment.Validate(); err != nil {
			return fmt.Errorf("task %q round %d: %w", name, round, err)
		}
	}

	if err := r.Cache.Store(ctx, snapshot); err != nil {
		logger.Errorw("storing snapshot failed", "error", err)
	}

	event := pagewatch.Event{
		Task:       task,
		Round:      round,
		RoundID:    id,
		Comparison: comparison,
		Snapshot:   snapshot,
	}
	logger.Debugw("round compared", "status", comparison.Status.String())
	for _, n := range r.Notifiers {
		if err := n.Notify(ctx, event); err != nil {
			if errors.Is(err, pagewatch.ErrInvalidAlignment) {
				return fmt.Errorf("task %q round %d: %w", name, round, err)
			}
			logger.Errorw("notifier failed", "error", err)
		}
	}
	return nil
}

func (r *Runner) roundID() string {
	if r.NewRoundID != nil {
		return r.NewRoundID()
	}
	return uuid.NewString()
}
