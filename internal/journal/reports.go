package journal

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/carelog/internal/embedding"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/weekly"
)

// answerPair is the first and last answer to one question within a week.
type answerPair struct {
	questionID int64
	first      types.Answer
	last       types.Answer
}

// BuildReport (re)builds the elder's report for (year, week). Each question
// linked to a studied guide of that week and answered at least twice gets an
// analysis comparing its first and last answer. Collaborator failures leave
// any previously stored report untouched.
func (s *Service) BuildReport(ctx context.Context, elderID int64, year, week int) (*types.Report, error) {
	w, err := weekly.For(year, week)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetElder(ctx, elderID); err != nil {
		return nil, err
	}

	start := time.Now()
	guides, err := s.store.StudiedGuides(ctx, elderID, w.Start, w.EndExclusive())
	if err != nil {
		return nil, err
	}
	if len(guides) == 0 {
		return nil, ErrNoStudiedGuides
	}

	pairs, err := s.answerPairs(ctx, elderID, guideQuestions(guides), w)
	if err != nil {
		return nil, err
	}

	analyses, err := s.analyze(ctx, pairs)
	if err != nil {
		return nil, err
	}

	report, err := s.store.SaveReport(ctx, types.Report{
		ElderID:    elderID,
		Year:       w.Year,
		WeekNumber: w.Week,
	}, analyses)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	report.StartDate = w.StartDate()
	report.EndDate = w.EndDate()

	s.logger.Info("report built",
		"action", "build_report",
		"elder_id", elderID,
		"week", w.String(),
		"guides", len(guides),
		"analyses", len(analyses),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// Report returns the stored report for (year, week).
func (s *Service) Report(ctx context.Context, elderID int64, year, week int) (*types.Report, error) {
	w, err := weekly.For(year, week)
	if err != nil {
		return nil, err
	}
	report, err := s.store.GetReport(ctx, elderID, w.Year, w.Week)
	if err != nil {
		return nil, err
	}
	report.StartDate = w.StartDate()
	report.EndDate = w.EndDate()
	return report, nil
}

// guideQuestions returns the distinct question ids of guides, ascending.
func guideQuestions(guides []types.ActivityGuide) []int64 {
	var ids []int64
	for _, g := range guides {
		ids = append(ids, g.QuestionIDs...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// answerPairs loads the first and last answer in the window for every
// question answered at least twice.
func (s *Service) answerPairs(ctx context.Context, elderID int64, questionIDs []int64, w weekly.Window) ([]answerPair, error) {
	var pairs []answerPair
	for _, qid := range questionIDs {
		answers, err := s.store.AnswersBetween(ctx, elderID, qid, w.StartDate(), w.EndDate())
		if err != nil {
			return nil, err
		}
		if len(answers) < 2 {
			continue
		}
		pairs = append(pairs, answerPair{
			questionID: qid,
			first:      answers[0],
			last:       answers[len(answers)-1],
		})
	}
	return pairs, nil
}

// analyze embeds both answers of every pair and scores their similarity.
// Pairs are processed concurrently; the result keeps the input order.
func (s *Service) analyze(ctx context.Context, pairs []answerPair) ([]types.Analysis, error) {
	analyses := make([]types.Analysis, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			first, err := s.embed(gctx, p.first.Response)
			if err != nil {
				return err
			}
			last, err := s.embed(gctx, p.last.Response)
			if err != nil {
				return err
			}
			sim, err := embedding.SimilarityPercent(first, last)
			if err != nil {
				return &ExternalServiceError{Service: "embedding", Err: fmt.Errorf("question %d: %w", p.questionID, err)}
			}
			analyses[i] = types.Analysis{
				QuestionID:    p.questionID,
				FirstAnswerID: p.first.ID,
				LastAnswerID:  p.last.ID,
				Similarity:    sim,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analyses, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	return call(ctx, s, "embedding", func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	})
}
