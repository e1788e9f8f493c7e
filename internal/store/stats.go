package store

import (
	"context"
	"fmt"

	"github.com/hyperengineering/carelog/internal/types"
)

// Stats returns row counts for the main entities.
func (s *SQLiteStore) Stats(ctx context.Context) (*types.Stats, error) {
	var st types.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM elders),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM answers),
			(SELECT COUNT(*) FROM records),
			(SELECT COUNT(*) FROM activity_guides),
			(SELECT COUNT(*) FROM reports)
	`).Scan(&st.Elders, &st.Questions, &st.Answers, &st.Records, &st.Guides, &st.Reports)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &st, nil
}
