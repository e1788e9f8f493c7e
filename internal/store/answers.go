package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

const answerColumns = `id, question_id, elder_id, response, response_date, created_at`

func scanAnswer(sc scanner) (*types.Answer, error) {
	var a types.Answer
	var createdAt string
	if err := sc.Scan(&a.ID, &a.QuestionID, &a.ElderID, &a.Response, &a.ResponseDate, &createdAt); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func (s *SQLiteStore) queryAnswers(ctx context.Context, query string, args ...any) ([]types.Answer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	answers := []types.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return answers, nil
}

// ListAnswers returns every answer ordered by id.
func (s *SQLiteStore) ListAnswers(ctx context.Context) ([]types.Answer, error) {
	return s.queryAnswers(ctx, `SELECT `+answerColumns+` FROM answers ORDER BY id`)
}

// AnswersForQuestion returns all answers to a question, oldest first.
func (s *SQLiteStore) AnswersForQuestion(ctx context.Context, questionID int64) ([]types.Answer, error) {
	return s.queryAnswers(ctx, `
		SELECT `+answerColumns+` FROM answers
		WHERE question_id = ?
		ORDER BY response_date, id
	`, questionID)
}

// GetAnswer retrieves an answer by id.
func (s *SQLiteStore) GetAnswer(ctx context.Context, id int64) (*types.Answer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = ?`, id)
	a, err := scanAnswer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("answer", id)
		}
		return nil, fmt.Errorf("scan answer: %w", err)
	}
	return a, nil
}

// CreateAnswer inserts an answer. ResponseDate must already be set.
func (s *SQLiteStore) CreateAnswer(ctx context.Context, in types.NewAnswer) (*types.Answer, error) {
	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (question_id, elder_id, response, response_date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, in.QuestionID, in.ElderID, in.Response, in.ResponseDate, createdAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("answer references unknown elder or question: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("answer id: %w", err)
	}

	return &types.Answer{
		ID:           id,
		QuestionID:   in.QuestionID,
		ElderID:      in.ElderID,
		Response:     in.Response,
		ResponseDate: in.ResponseDate,
		CreatedAt:    parseTime(createdAt),
	}, nil
}

// UpdateAnswerResponse overwrites the response text and date of an answer.
func (s *SQLiteStore) UpdateAnswerResponse(ctx context.Context, id int64, response, responseDate string) (*types.Answer, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE answers SET response = ?, response_date = ? WHERE id = ?
	`, response, responseDate, id)
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return nil, notFound("answer", id)
	}
	return s.GetAnswer(ctx, id)
}

// LatestAnswer returns the elder's most recent answer to a question.
func (s *SQLiteStore) LatestAnswer(ctx context.Context, elderID, questionID int64) (*types.Answer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+answerColumns+` FROM answers
		WHERE elder_id = ? AND question_id = ?
		ORDER BY response_date DESC, id DESC
		LIMIT 1
	`, elderID, questionID)
	a, err := scanAnswer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("answer (elder %d, question %d): %w", elderID, questionID, ErrNotFound)
		}
		return nil, fmt.Errorf("scan answer: %w", err)
	}
	return a, nil
}

// AnswersBetween returns the elder's answers to a question whose
// response_date lies in [fromDate, toDate], ordered by date then id.
func (s *SQLiteStore) AnswersBetween(ctx context.Context, elderID, questionID int64, fromDate, toDate string) ([]types.Answer, error) {
	return s.queryAnswers(ctx, `
		SELECT `+answerColumns+` FROM answers
		WHERE elder_id = ? AND question_id = ?
		  AND response_date >= ? AND response_date <= ?
		ORDER BY response_date, id
	`, elderID, questionID, fromDate, toDate)
}
