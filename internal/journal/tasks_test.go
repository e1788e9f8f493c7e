package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/weekly"
)

func TestTaskStatusFor(t *testing.T) {
	tests := []struct {
		name                        string
		records, guides, iteration int
		want                        types.TaskStatus
	}{
		{"nothing", 0, 0, 0, types.TaskIdle},
		{"records only", 2, 0, 0, types.TaskRecorded},
		{"unstudied guide beats records", 2, 1, 0, types.TaskGuided},
		{"all guides studied", 1, 1, 1, types.TaskIdle},
		{"more records than studied", 3, 2, 2, types.TaskRecorded},
		{"three studied", 5, 5, 3, types.TaskAccomplished},
		{"three studied without records", 0, 4, 3, types.TaskAccomplished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskStatusFor(tt.records, tt.guides, tt.iteration))
		})
	}
}

func TestWeeklyTask_CountsOnlyTheWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")

	f.record(t, e.ID)
	f.record(t, e.ID)
	f.guide(t, e.ID, false)

	// Outside week 10: the Sunday before and the Monday after.
	f.at(time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC), func() {
		f.record(t, e.ID)
		f.guide(t, e.ID, true)
	})
	f.at(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), func() {
		f.guide(t, e.ID, true)
	})

	task, err := f.svc.WeeklyTask(ctx, e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, e.ID, task.ElderID)
	assert.Equal(t, 2024, task.Year)
	assert.Equal(t, 10, task.WeekNumber)
	assert.Equal(t, 0, task.Iteration)
	assert.Equal(t, types.TaskGuided, task.Status)
}

func TestWeeklyTask_RecomputesFromGroundTruth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")

	f.record(t, e.ID)
	f.record(t, e.ID)
	g := f.guide(t, e.ID, false)

	first, err := f.svc.WeeklyTask(ctx, e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, types.TaskGuided, first.Status)

	_, err = f.store.FinishGuide(ctx, g.ID)
	require.NoError(t, err)

	second, err := f.svc.WeeklyTask(ctx, e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "task row is reused")
	assert.Equal(t, 1, second.Iteration)
	assert.Equal(t, types.TaskRecorded, second.Status)

	stored, err := f.store.GetTask(ctx, e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, second.Status, stored.Status)
	assert.Equal(t, second.Iteration, stored.Iteration)

	// Recomputing without changes yields the same result.
	third, err := f.svc.WeeklyTask(ctx, e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, second.Status, third.Status)
	assert.Equal(t, second.Iteration, third.Iteration)
}

func TestWeeklyTask_Accomplished(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	for i := 0; i < 3; i++ {
		f.guide(t, e.ID, true)
	}

	task, err := f.svc.WeeklyTask(context.Background(), e.ID, 2024, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, task.Iteration)
	assert.Equal(t, types.TaskAccomplished, task.Status)
}

func TestWeeklyTask_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.WeeklyTask(ctx, 42, 2024, 10)
	assert.ErrorIs(t, err, store.ErrNotFound)

	e := f.elder(t, "Ada")
	_, err = f.svc.WeeklyTask(ctx, e.ID, 2024, 54)
	assert.ErrorIs(t, err, weekly.ErrInvalidWeek)
}

func TestWeeklyTasks_EveryElder(t *testing.T) {
	f := newFixture(t)
	a := f.elder(t, "Ada")
	b := f.elder(t, "Bob")
	f.record(t, b.ID)

	tasks, err := f.svc.WeeklyTasks(context.Background(), 2024, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byElder := map[int64]types.Task{}
	for _, task := range tasks {
		byElder[task.ElderID] = task
	}
	assert.Equal(t, types.TaskIdle, byElder[a.ID].Status)
	assert.Equal(t, types.TaskRecorded, byElder[b.ID].Status)
}

func TestWeeklyTasks_NoElders(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.WeeklyTasks(context.Background(), 2024, 10)
	assert.ErrorIs(t, err, ErrNoElders)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestThisWeekTasks_UsesClock(t *testing.T) {
	f := newFixture(t)
	f.elder(t, "Ada")

	tasks, err := f.svc.ThisWeekTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2024, tasks[0].Year)
	assert.Equal(t, 10, tasks[0].WeekNumber)
}
