package journal

import (
	"context"
	"strings"

	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

// ListGuides returns every activity guide.
func (s *Service) ListGuides(ctx context.Context) ([]types.ActivityGuide, error) {
	return s.store.ListGuides(ctx)
}

// CreateGuide stores a guide linked to existing questions. Either the guide
// and all of its links are written, or nothing is.
func (s *Service) CreateGuide(ctx context.Context, req types.CreateGuideRequest) (*types.ActivityGuide, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	guide, err := s.store.CreateGuide(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("guide created",
		"action", "create_guide",
		"elder_id", guide.ElderID,
		"guide_id", guide.ID,
		"questions", len(guide.QuestionIDs),
	)
	return guide, nil
}

// FinishGuide marks a guide as studied.
func (s *Service) FinishGuide(ctx context.Context, id int64) (*types.ActivityGuide, error) {
	return s.store.FinishGuide(ctx, id)
}

// GuideQuestions lists the questions of an existing guide.
func (s *Service) GuideQuestions(ctx context.Context, guideID int64) ([]types.Question, error) {
	if _, err := s.store.GetGuide(ctx, guideID); err != nil {
		return nil, err
	}
	return s.store.QuestionsForGuide(ctx, guideID)
}
