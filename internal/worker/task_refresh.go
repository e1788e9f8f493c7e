// Package worker runs periodic background jobs.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
)

// TaskRefresher recomputes the current week's tasks. Implemented by
// journal.Service.
type TaskRefresher interface {
	ThisWeekTasks(ctx context.Context) ([]types.Task, error)
}

// TaskRefreshWorker keeps every elder's task for the current week up to date
// so that progress is visible without a client asking for it.
type TaskRefreshWorker struct {
	refresher TaskRefresher
	interval  time.Duration
}

// NewTaskRefreshWorker creates a worker that refreshes tasks every interval.
func NewTaskRefreshWorker(r TaskRefresher, interval time.Duration) *TaskRefreshWorker {
	return &TaskRefreshWorker{
		refresher: r,
		interval:  interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
func (w *TaskRefreshWorker) Run(ctx context.Context) {
	slog.Info("task refresh worker started",
		"component", "worker",
		"worker", "task-refresh",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start, then on each tick
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("task refresh worker stopped",
				"component", "worker",
				"worker", "task-refresh",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *TaskRefreshWorker) refresh(ctx context.Context) {
	start := time.Now()
	tasks, err := w.refresher.ThisWeekTasks(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		// No elders yet.
		return
	case ctx.Err() != nil:
		return
	default:
		slog.Error("task refresh failed",
			"component", "worker",
			"worker", "task-refresh",
			"error", err,
		)
		return
	}

	var accomplished int
	for _, t := range tasks {
		if t.Status == types.TaskAccomplished {
			accomplished++
		}
	}
	slog.Info("task refresh completed",
		"component", "worker",
		"worker", "task-refresh",
		"tasks", len(tasks),
		"accomplished", accomplished,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
