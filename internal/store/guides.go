package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/carelog/internal/types"
)

const guideColumns = `id, elder_id, title, have_studied, created_at`

func scanGuide(sc scanner) (*types.ActivityGuide, error) {
	var g types.ActivityGuide
	var createdAt string
	if err := sc.Scan(&g.ID, &g.ElderID, &g.Title, &g.HaveStudied, &createdAt); err != nil {
		return nil, err
	}
	g.CreatedAt = parseTime(createdAt)
	return &g, nil
}

func (s *SQLiteStore) queryGuides(ctx context.Context, query string, args ...any) ([]types.ActivityGuide, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query guides: %w", err)
	}
	defer rows.Close()

	guides := []types.ActivityGuide{}
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guide: %w", err)
		}
		guides = append(guides, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guides: %w", err)
	}
	return guides, nil
}

// ListGuides returns every guide ordered by id.
func (s *SQLiteStore) ListGuides(ctx context.Context) ([]types.ActivityGuide, error) {
	return s.queryGuides(ctx, `SELECT `+guideColumns+` FROM activity_guides ORDER BY id`)
}

// GetGuide retrieves a guide with its question ids.
func (s *SQLiteStore) GetGuide(ctx context.Context, id int64) (*types.ActivityGuide, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+guideColumns+` FROM activity_guides WHERE id = ?`, id)
	g, err := scanGuide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("guide", id)
		}
		return nil, fmt.Errorf("scan guide: %w", err)
	}

	if g.QuestionIDs, err = s.guideQuestionIDs(ctx, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLiteStore) guideQuestionIDs(ctx context.Context, guideID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id FROM guide_questions WHERE guide_id = ? ORDER BY id
	`, guideID)
	if err != nil {
		return nil, fmt.Errorf("query guide questions: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan guide question: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guide questions: %w", err)
	}
	return ids, nil
}

// CreateGuide inserts a guide and its question links in one transaction.
// Repeated question ids are linked once.
func (s *SQLiteStore) CreateGuide(ctx context.Context, in types.CreateGuideRequest) (*types.ActivityGuide, error) {
	createdAt := s.timestamp()
	guide := &types.ActivityGuide{
		ElderID:     in.ElderID,
		Title:       in.Title,
		QuestionIDs: []int64{},
		CreatedAt:   parseTime(createdAt),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO activity_guides (elder_id, title, have_studied, created_at) VALUES (?, ?, 0, ?)
		`, in.ElderID, in.Title, createdAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return notFound("elder", in.ElderID)
			}
			return fmt.Errorf("insert guide: %w", err)
		}
		if guide.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("guide id: %w", err)
		}

		for _, qid := range in.QuestionIDs {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO guide_questions (guide_id, question_id, created_at) VALUES (?, ?, ?)
				ON CONFLICT (guide_id, question_id) DO NOTHING
			`, guide.ID, qid, createdAt)
			if err != nil {
				if isForeignKeyViolation(err) {
					return notFound("question", qid)
				}
				return fmt.Errorf("insert guide question: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				guide.QuestionIDs = append(guide.QuestionIDs, qid)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return guide, nil
}

// FinishGuide marks a guide as studied.
func (s *SQLiteStore) FinishGuide(ctx context.Context, id int64) (*types.ActivityGuide, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE activity_guides SET have_studied = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("update guide: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return nil, notFound("guide", id)
	}
	return s.GetGuide(ctx, id)
}

// GuideCounts returns how many of the elder's guides were created in
// [from, to), and how many of those are studied.
func (s *SQLiteStore) GuideCounts(ctx context.Context, elderID int64, from, to time.Time) (total, studied int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(have_studied), 0)
		FROM activity_guides
		WHERE elder_id = ? AND created_at >= ? AND created_at < ?
	`, elderID, formatTime(from), formatTime(to)).Scan(&total, &studied)
	if err != nil {
		return 0, 0, fmt.Errorf("count guides: %w", err)
	}
	return total, studied, nil
}

// StudiedGuides returns the elder's studied guides created in [from, to),
// each with its question ids.
func (s *SQLiteStore) StudiedGuides(ctx context.Context, elderID int64, from, to time.Time) ([]types.ActivityGuide, error) {
	guides, err := s.queryGuides(ctx, `
		SELECT `+guideColumns+` FROM activity_guides
		WHERE elder_id = ? AND have_studied = 1 AND created_at >= ? AND created_at < ?
		ORDER BY id
	`, elderID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}

	for i := range guides {
		if guides[i].QuestionIDs, err = s.guideQuestionIDs(ctx, guides[i].ID); err != nil {
			return nil, err
		}
	}
	return guides, nil
}
