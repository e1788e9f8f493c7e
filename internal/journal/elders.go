package journal

import (
	"context"

	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

// ListElders returns every elder.
func (s *Service) ListElders(ctx context.Context) ([]types.Elder, error) {
	return s.store.ListElders(ctx)
}

// Elder returns one elder.
func (s *Service) Elder(ctx context.Context, id int64) (*types.Elder, error) {
	return s.store.GetElder(ctx, id)
}

// CreateElder validates and stores a new elder.
func (s *Service) CreateElder(ctx context.Context, in types.NewElder) (*types.Elder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	elder, err := s.store.CreateElder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("elder created", "action", "create_elder", "elder_id", elder.ID)
	return elder, nil
}

// ElderKeywords lists the keywords collected from an elder's records with
// the elder's preference for each.
func (s *Service) ElderKeywords(ctx context.Context, elderID int64) ([]types.KeywordPreference, error) {
	if _, err := s.store.GetElder(ctx, elderID); err != nil {
		return nil, err
	}
	return s.store.ElderKeywords(ctx, elderID)
}

// SetKeywordPreference marks a keyword as preferred or not for an elder.
func (s *Service) SetKeywordPreference(ctx context.Context, elderID, keywordID int64, in types.PreferenceUpdate) (*types.KeywordPreference, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.store.SetKeywordPreference(ctx, elderID, keywordID, *in.IsPreferred)
}
