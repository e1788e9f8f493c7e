package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/weekly"
)

// TaskStatusFor derives a task status from the week's counts. Later rules
// override earlier ones.
func TaskStatusFor(records, guides, iteration int) types.TaskStatus {
	status := types.TaskIdle
	if records > iteration {
		status = types.TaskRecorded
	}
	if guides > iteration {
		status = types.TaskGuided
	}
	if iteration >= 3 {
		status = types.TaskAccomplished
	}
	return status
}

// WeeklyTask recomputes and persists the elder's task for (year, week).
func (s *Service) WeeklyTask(ctx context.Context, elderID int64, year, week int) (*types.Task, error) {
	w, err := weekly.For(year, week)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetElder(ctx, elderID); err != nil {
		return nil, err
	}
	return s.computeTask(ctx, elderID, w)
}

// WeeklyTasks recomputes the task of every elder for (year, week).
func (s *Service) WeeklyTasks(ctx context.Context, year, week int) ([]types.Task, error) {
	w, err := weekly.For(year, week)
	if err != nil {
		return nil, err
	}

	elders, err := s.store.ListElders(ctx)
	if err != nil {
		return nil, err
	}
	if len(elders) == 0 {
		return nil, ErrNoElders
	}

	start := time.Now()
	tasks := make([]types.Task, 0, len(elders))
	for _, e := range elders {
		t, err := s.computeTask(ctx, e.ID, w)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	s.logger.Debug("weekly tasks computed",
		"action", "weekly_tasks",
		"week", w.String(),
		"elders", len(elders),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tasks, nil
}

// ThisWeekTasks recomputes every elder's task for the ISO week containing
// the service clock's current date.
func (s *Service) ThisWeekTasks(ctx context.Context) ([]types.Task, error) {
	year, week := weekly.Current(s.now())
	return s.WeeklyTasks(ctx, year, week)
}

func (s *Service) computeTask(ctx context.Context, elderID int64, w weekly.Window) (*types.Task, error) {
	from, to := w.Start, w.EndExclusive()

	guides, studied, err := s.store.GuideCounts(ctx, elderID, from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.store.CountRecords(ctx, elderID, from, to)
	if err != nil {
		return nil, err
	}

	task, err := s.store.UpsertTask(ctx, types.Task{
		ElderID:    elderID,
		Year:       w.Year,
		WeekNumber: w.Week,
		Status:     TaskStatusFor(records, guides, studied),
		Iteration:  studied,
	})
	if err != nil {
		return nil, fmt.Errorf("save task for elder %d: %w", elderID, err)
	}
	return task, nil
}
