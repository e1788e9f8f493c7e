package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

// ListRecords returns every record.
func (s *Service) ListRecords(ctx context.Context) ([]types.Record, error) {
	return s.store.ListRecords(ctx)
}

// ElderRecords returns the records of an existing elder.
func (s *Service) ElderRecords(ctx context.Context, elderID int64) ([]types.Record, error) {
	if _, err := s.store.GetElder(ctx, elderID); err != nil {
		return nil, err
	}
	return s.store.RecordsForElder(ctx, elderID)
}

// Record returns one record with its image and keywords.
func (s *Service) Record(ctx context.Context, id int64) (*types.Record, error) {
	return s.store.GetRecord(ctx, id)
}

// CreateRecord assembles a diary record from the elder's latest answer to
// each requested question: the transcript is summarized, titled, tagged and
// illustrated, then everything is stored in one transaction. Questions the
// elder never answered are skipped.
func (s *Service) CreateRecord(ctx context.Context, req types.CreateRecordRequest) (*types.Record, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetElder(ctx, req.ElderID); err != nil {
		return nil, err
	}

	start := time.Now()
	pairs, answered, err := s.latestAnswers(ctx, req.ElderID, req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrNoAnswers
	}

	summary, err := call(ctx, s, "summarize", func(ctx context.Context) (string, error) {
		return s.writer.Summarize(ctx, assistant.Transcript(pairs))
	})
	if err != nil {
		return nil, err
	}

	var (
		title    string
		keywords []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		title, err = call(gctx, s, "generate_title", func(ctx context.Context) (string, error) {
			return s.writer.GenerateTitle(ctx, summary)
		})
		return err
	})
	g.Go(func() error {
		var err error
		keywords, err = call(gctx, s, "extract_keywords", func(ctx context.Context) ([]string, error) {
			return s.writer.ExtractKeywords(ctx, summary)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(keywords) > s.maxKeywords {
		keywords = keywords[:s.maxKeywords]
	}

	prompt := strings.Join(keywords, ", ")
	if prompt == "" {
		prompt = title
	}
	img, err := call(ctx, s, "generate_image", func(ctx context.Context) (*assistant.Image, error) {
		return s.illustrator.GenerateImage(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	imageURL, err := s.artifacts.Put(ctx, img.Data, img.ContentType, img.Extension)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	record, err := s.store.CreateRecord(ctx, types.NewRecord{
		ElderID:     req.ElderID,
		Title:       title,
		Content:     summary,
		ImageURL:    imageURL,
		Keywords:    keywords,
		QuestionIDs: answered,
	})
	if err != nil {
		// The image is useless without its record.
		if derr := s.artifacts.Delete(context.WithoutCancel(ctx), imageURL); derr != nil {
			s.logger.Warn("orphaned record image",
				"action", "create_record",
				"image", imageURL,
				"error", derr,
			)
		}
		return nil, err
	}

	s.logger.Info("record created",
		"action", "create_record",
		"elder_id", req.ElderID,
		"record_id", record.ID,
		"questions", len(answered),
		"keywords", len(record.Keywords),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return record, nil
}

// latestAnswers pairs each requested question with the elder's latest answer
// to it, in request order. Repeated ids are used once.
func (s *Service) latestAnswers(ctx context.Context, elderID int64, questionIDs []int64) ([]assistant.QA, []int64, error) {
	var (
		pairs    []assistant.QA
		answered []int64
	)
	seen := make(map[int64]bool, len(questionIDs))
	for _, qid := range questionIDs {
		if seen[qid] {
			continue
		}
		seen[qid] = true

		answer, err := s.store.LatestAnswer(ctx, elderID, qid)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		question, err := s.store.GetQuestion(ctx, qid)
		if err != nil {
			return nil, nil, err
		}

		pairs = append(pairs, assistant.QA{Question: question.Text, Answer: answer.Response})
		answered = append(answered, qid)
	}
	return pairs, answered, nil
}
