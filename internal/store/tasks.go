package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

// UpsertTask writes status and iteration for the task's (elder, year, week),
// creating the row on first use.
func (s *SQLiteStore) UpsertTask(ctx context.Context, task types.Task) (*types.Task, error) {
	now := s.timestamp()
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (elder_id, year, week_number, status, iteration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (elder_id, year, week_number) DO UPDATE SET
			status = excluded.status,
			iteration = excluded.iteration,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`, task.ElderID, task.Year, task.WeekNumber, int(task.Status), task.Iteration, now, now).
		Scan(&task.ID, &createdAt, &updatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, notFound("elder", task.ElderID)
		}
		return nil, fmt.Errorf("upsert task: %w", err)
	}
	task.CreatedAt = parseTime(createdAt)
	task.UpdatedAt = parseTime(updatedAt)
	return &task, nil
}

// GetTask retrieves the task for (elder, year, week).
func (s *SQLiteStore) GetTask(ctx context.Context, elderID int64, year, week int) (*types.Task, error) {
	var t types.Task
	var status int
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, elder_id, year, week_number, status, iteration, created_at, updated_at
		FROM tasks WHERE elder_id = ? AND year = ? AND week_number = ?
	`, elderID, year, week).Scan(&t.ID, &t.ElderID, &t.Year, &t.WeekNumber, &status, &t.Iteration, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task (elder %d, %d-W%02d): %w", elderID, year, week, ErrNotFound)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = types.TaskStatus(status)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
