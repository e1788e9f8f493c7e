package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/carelog/internal/types"
)

const recordSelect = `
	SELECT r.id, r.elder_id, r.title, r.content, r.created_at, i.url
	FROM records r
	LEFT JOIN images i ON i.record_id = r.id`

func scanRecord(sc scanner) (*types.Record, error) {
	var r types.Record
	var createdAt string
	var image sql.NullString
	if err := sc.Scan(&r.ID, &r.ElderID, &r.Title, &r.Content, &createdAt, &image); err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	if image.Valid {
		url := image.String
		r.Image = &url
	}
	r.Keywords = []string{}
	return &r, nil
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	rows.Close()

	if err := s.attachKeywords(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// attachKeywords fills Keywords for every record with one query.
func (s *SQLiteStore) attachKeywords(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	index := make(map[int64]int, len(records))
	ids := make([]int64, len(records))
	for i, r := range records {
		index[r.ID] = i
		ids[i] = r.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rk.record_id, k.keyword
		FROM record_keywords rk
		JOIN keywords k ON k.id = rk.keyword_id
		WHERE rk.record_id IN (`+placeholders(len(ids))+`)
		ORDER BY rk.id
	`, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("query record keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID int64
		var keyword string
		if err := rows.Scan(&recordID, &keyword); err != nil {
			return fmt.Errorf("scan record keyword: %w", err)
		}
		i := index[recordID]
		records[i].Keywords = append(records[i].Keywords, keyword)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate record keywords: %w", err)
	}
	return nil
}

// ListRecords returns every record, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]types.Record, error) {
	return s.queryRecords(ctx, recordSelect+` ORDER BY r.created_at DESC, r.id DESC`)
}

// RecordsForElder returns an elder's records, newest first.
func (s *SQLiteStore) RecordsForElder(ctx context.Context, elderID int64) ([]types.Record, error) {
	return s.queryRecords(ctx, recordSelect+` WHERE r.elder_id = ? ORDER BY r.created_at DESC, r.id DESC`, elderID)
}

// GetRecord retrieves a record with its image and keywords.
func (s *SQLiteStore) GetRecord(ctx context.Context, id int64) (*types.Record, error) {
	records, err := s.queryRecords(ctx, recordSelect+` WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFound("record", id)
	}
	return &records[0], nil
}

// CreateRecord persists a record, its keywords, keyword preferences, image
// and question links in a single transaction. A keyword repeated in the input
// returns ErrConflict and nothing is stored.
func (s *SQLiteStore) CreateRecord(ctx context.Context, in types.NewRecord) (*types.Record, error) {
	createdAt := s.timestamp()
	record := &types.Record{
		ElderID:   in.ElderID,
		Title:     in.Title,
		Content:   in.Content,
		Keywords:  []string{},
		CreatedAt: parseTime(createdAt),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (elder_id, title, content, created_at) VALUES (?, ?, ?, ?)
		`, in.ElderID, in.Title, in.Content, createdAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return notFound("elder", in.ElderID)
			}
			return fmt.Errorf("insert record: %w", err)
		}
		if record.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("record id: %w", err)
		}

		// A keyword repeated in one record fails the whole insert with ErrConflict.
		for _, kw := range in.Keywords {
			keywordID, err := s.upsertKeyword(ctx, tx, kw)
			if err != nil {
				return err
			}
			if err := s.linkKeyword(ctx, tx, record.ID, keywordID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO keyword_preferences (elder_id, keyword_id, is_preferred, created_at)
				VALUES (?, ?, 1, ?)
				ON CONFLICT (elder_id, keyword_id) DO NOTHING
			`, in.ElderID, keywordID, createdAt); err != nil {
				return fmt.Errorf("insert keyword preference: %w", err)
			}
			record.Keywords = append(record.Keywords, kw)
		}

		if in.ImageURL != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO images (record_id, url, created_at) VALUES (?, ?, ?)
			`, record.ID, in.ImageURL, createdAt); err != nil {
				return fmt.Errorf("insert image: %w", err)
			}
			url := in.ImageURL
			record.Image = &url
		}

		for _, qid := range in.QuestionIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO record_questions (record_id, question_id, created_at) VALUES (?, ?, ?)
				ON CONFLICT (record_id, question_id) DO NOTHING
			`, record.ID, qid, createdAt); err != nil {
				if isForeignKeyViolation(err) {
					return notFound("question", qid)
				}
				return fmt.Errorf("insert record question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// upsertKeyword returns the id of the keyword, creating it if missing. A
// unique violation means a concurrent writer created it first, so the lookup
// is retried once.
func (s *SQLiteStore) upsertKeyword(ctx context.Context, q querier, keyword string) (int64, error) {
	for attempt := 0; ; attempt++ {
		var id int64
		err := q.QueryRowContext(ctx, `SELECT id FROM keywords WHERE keyword = ?`, keyword).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("find keyword: %w", err)
		}

		res, err := q.ExecContext(ctx, `INSERT INTO keywords (keyword, created_at) VALUES (?, ?)`, keyword, s.timestamp())
		if err == nil {
			return res.LastInsertId()
		}
		if attempt == 0 && isUniqueViolation(err) {
			continue
		}
		return 0, fmt.Errorf("insert keyword %q: %w", keyword, err)
	}
}

func (s *SQLiteStore) linkKeyword(ctx context.Context, q querier, recordID, keywordID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO record_keywords (record_id, keyword_id, created_at) VALUES (?, ?, ?)
	`, recordID, keywordID, s.timestamp())
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("keyword %d already linked to record %d: %w", keywordID, recordID, ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("record %d or keyword %d: %w", recordID, keywordID, ErrNotFound)
	default:
		return fmt.Errorf("link keyword: %w", err)
	}
}

// LinkKeyword attaches an existing keyword to a record. Linking the same pair
// twice returns ErrConflict and leaves the original link untouched.
func (s *SQLiteStore) LinkKeyword(ctx context.Context, recordID, keywordID int64) error {
	return s.linkKeyword(ctx, s.db, recordID, keywordID)
}

// CountRecords counts an elder's records created in [from, to).
func (s *SQLiteStore) CountRecords(ctx context.Context, elderID int64, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records
		WHERE elder_id = ? AND created_at >= ? AND created_at < ?
	`, elderID, formatTime(from), formatTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
