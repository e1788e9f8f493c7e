package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

const questionColumns = `q.id, q.text, q.is_reported, q.created_at`

func scanQuestion(sc scanner) (*types.Question, error) {
	var q types.Question
	var createdAt string
	if err := sc.Scan(&q.ID, &q.Text, &q.IsReported, &createdAt); err != nil {
		return nil, err
	}
	q.CreatedAt = parseTime(createdAt)
	return &q, nil
}

func (s *SQLiteStore) queryQuestions(ctx context.Context, query string, args ...any) ([]types.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []types.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

// ListQuestions returns every question ordered by id.
func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]types.Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions q ORDER BY q.id`)
}

// GetQuestion retrieves a question by id.
func (s *SQLiteStore) GetQuestion(ctx context.Context, id int64) (*types.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions q WHERE q.id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("question", id)
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return q, nil
}

// CreateQuestion inserts a question. Duplicate text returns ErrConflict.
func (s *SQLiteStore) CreateQuestion(ctx context.Context, text string) (*types.Question, error) {
	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx, `INSERT INTO questions (text, created_at) VALUES (?, ?)`, text, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("question %q: %w", text, ErrConflict)
		}
		return nil, fmt.Errorf("insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("question id: %w", err)
	}
	return &types.Question{ID: id, Text: text, CreatedAt: parseTime(createdAt)}, nil
}

// GetOrCreateQuestion returns the question with the given text, inserting it
// first if needed.
func (s *SQLiteStore) GetOrCreateQuestion(ctx context.Context, text string) (*types.Question, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (text, created_at) VALUES (?, ?)
		ON CONFLICT (text) DO NOTHING
	`, text, s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions q WHERE q.text = ?`, text)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("read question: %w", err)
	}
	return q, nil
}

// QuestionsForRecord lists the questions a record was built from.
func (s *SQLiteStore) QuestionsForRecord(ctx context.Context, recordID int64) ([]types.Question, error) {
	return s.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM record_questions rq
		JOIN questions q ON q.id = rq.question_id
		WHERE rq.record_id = ?
		ORDER BY rq.id
	`, recordID)
}

// QuestionsForGuide lists the questions linked to a guide.
func (s *SQLiteStore) QuestionsForGuide(ctx context.Context, guideID int64) ([]types.Question, error) {
	return s.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM guide_questions gq
		JOIN questions q ON q.id = gq.question_id
		WHERE gq.guide_id = ?
		ORDER BY gq.id
	`, guideID)
}
