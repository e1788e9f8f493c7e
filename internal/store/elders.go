package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

const elderColumns = `id, name, birth_date, gender, care_level, contact_info, created_at`

func scanElder(sc scanner) (*types.Elder, error) {
	var e types.Elder
	var gender, createdAt string
	if err := sc.Scan(&e.ID, &e.Name, &e.BirthDate, &gender, &e.CareLevel, &e.ContactInfo, &createdAt); err != nil {
		return nil, err
	}
	e.Gender = types.Gender(gender)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// ListElders returns every elder ordered by id.
func (s *SQLiteStore) ListElders(ctx context.Context) ([]types.Elder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+elderColumns+` FROM elders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query elders: %w", err)
	}
	defer rows.Close()

	elders := []types.Elder{}
	for rows.Next() {
		e, err := scanElder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan elder: %w", err)
		}
		elders = append(elders, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elders: %w", err)
	}
	return elders, nil
}

// GetElder retrieves an elder by id.
func (s *SQLiteStore) GetElder(ctx context.Context, id int64) (*types.Elder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+elderColumns+` FROM elders WHERE id = ?`, id)
	e, err := scanElder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("elder", id)
		}
		return nil, fmt.Errorf("scan elder: %w", err)
	}
	return e, nil
}

// CreateElder inserts a new elder.
func (s *SQLiteStore) CreateElder(ctx context.Context, in types.NewElder) (*types.Elder, error) {
	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO elders (name, birth_date, gender, care_level, contact_info, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Name, in.BirthDate, string(in.Gender), in.CareLevel, in.ContactInfo, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert elder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("elder id: %w", err)
	}

	return &types.Elder{
		ID:          id,
		Name:        in.Name,
		BirthDate:   in.BirthDate,
		Gender:      in.Gender,
		CareLevel:   in.CareLevel,
		ContactInfo: in.ContactInfo,
		CreatedAt:   parseTime(createdAt),
	}, nil
}

// ElderKeywords lists an elder's keyword preferences in the order they were
// first seen.
func (s *SQLiteStore) ElderKeywords(ctx context.Context, elderID int64) ([]types.KeywordPreference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kp.elder_id, kp.keyword_id, k.keyword, kp.is_preferred
		FROM keyword_preferences kp
		JOIN keywords k ON k.id = kp.keyword_id
		WHERE kp.elder_id = ?
		ORDER BY kp.id
	`, elderID)
	if err != nil {
		return nil, fmt.Errorf("query keyword preferences: %w", err)
	}
	defer rows.Close()

	prefs := []types.KeywordPreference{}
	for rows.Next() {
		var p types.KeywordPreference
		if err := rows.Scan(&p.ElderID, &p.KeywordID, &p.Keyword, &p.IsPreferred); err != nil {
			return nil, fmt.Errorf("scan keyword preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword preferences: %w", err)
	}
	return prefs, nil
}

// SetKeywordPreference updates an existing preference.
func (s *SQLiteStore) SetKeywordPreference(ctx context.Context, elderID, keywordID int64, preferred bool) (*types.KeywordPreference, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE keyword_preferences SET is_preferred = ?
		WHERE elder_id = ? AND keyword_id = ?
	`, preferred, elderID, keywordID)
	if err != nil {
		return nil, fmt.Errorf("update keyword preference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("keyword preference (elder %d, keyword %d): %w", elderID, keywordID, ErrNotFound)
	}

	p := types.KeywordPreference{ElderID: elderID, KeywordID: keywordID, IsPreferred: preferred}
	err = s.db.QueryRowContext(ctx, `SELECT keyword FROM keywords WHERE id = ?`, keywordID).Scan(&p.Keyword)
	if err != nil {
		return nil, fmt.Errorf("read keyword: %w", err)
	}
	return &p, nil
}
