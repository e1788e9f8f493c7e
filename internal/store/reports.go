package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

// SaveReport upserts the report for (elder, year, week) and replaces its
// analyses, all in one transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report types.Report, analyses []types.Analysis) (*types.Report, error) {
	now := s.timestamp()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var createdAt, updatedAt string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO reports (elder_id, year, week_number, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (elder_id, year, week_number) DO UPDATE SET updated_at = excluded.updated_at
			RETURNING id, created_at, updated_at
		`, report.ElderID, report.Year, report.WeekNumber, now, now).Scan(&report.ID, &createdAt, &updatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return notFound("elder", report.ElderID)
			}
			return fmt.Errorf("upsert report: %w", err)
		}
		report.CreatedAt = parseTime(createdAt)
		report.UpdatedAt = parseTime(updatedAt)

		if _, err := tx.ExecContext(ctx, `DELETE FROM analysis WHERE report_id = ?`, report.ID); err != nil {
			return fmt.Errorf("delete analyses: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO analysis (report_id, elder_id, question_id, first_answer_id, last_answer_id, similarity, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range analyses {
			if _, err := stmt.ExecContext(ctx, report.ID, report.ElderID, a.QuestionID, a.FirstAnswerID, a.LastAnswerID, a.Similarity, now); err != nil {
				return fmt.Errorf("insert analysis: %w", err)
			}
		}

		report.Analyses, err = reportAnalyses(ctx, tx, report.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReport retrieves the report for (elder, year, week) with its analyses.
func (s *SQLiteStore) GetReport(ctx context.Context, elderID int64, year, week int) (*types.Report, error) {
	var r types.Report
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, elder_id, year, week_number, created_at, updated_at
		FROM reports WHERE elder_id = ? AND year = ? AND week_number = ?
	`, elderID, year, week).Scan(&r.ID, &r.ElderID, &r.Year, &r.WeekNumber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report (elder %d, %d-W%02d): %w", elderID, year, week, ErrNotFound)
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)

	if r.Analyses, err = reportAnalyses(ctx, s.db, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

// reportAnalyses loads a report's analyses joined with the question and
// answer texts they compare.
func reportAnalyses(ctx context.Context, q querier, reportID int64) ([]types.AnalysisDetail, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.report_id, a.elder_id, a.question_id, a.first_answer_id, a.last_answer_id,
		       a.similarity, a.created_at,
		       q.text, fa.response, fa.response_date, la.response, la.response_date
		FROM analysis a
		JOIN questions q ON q.id = a.question_id
		JOIN answers fa ON fa.id = a.first_answer_id
		JOIN answers la ON la.id = a.last_answer_id
		WHERE a.report_id = ?
		ORDER BY a.id
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	details := []types.AnalysisDetail{}
	for rows.Next() {
		var d types.AnalysisDetail
		var createdAt string
		if err := rows.Scan(
			&d.ID, &d.ReportID, &d.ElderID, &d.QuestionID, &d.FirstAnswerID, &d.LastAnswerID,
			&d.Similarity, &createdAt,
			&d.QuestionText, &d.FirstResponse, &d.FirstResponseDate, &d.LastResponse, &d.LastResponseDate,
		); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return details, nil
}
