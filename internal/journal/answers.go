package journal

import (
	"context"
	"io"
	"strings"

	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

const maxResponseLength = 10000

// ListAnswers returns every answer.
func (s *Service) ListAnswers(ctx context.Context) ([]types.Answer, error) {
	return s.store.ListAnswers(ctx)
}

// QuestionAnswers returns every answer to an existing question.
func (s *Service) QuestionAnswers(ctx context.Context, questionID int64) ([]types.Answer, error) {
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.AnswersForQuestion(ctx, questionID)
}

// AudioAnswer transcribes a spoken answer and stores it dated today.
func (s *Service) AudioAnswer(ctx context.Context, elderID, questionID int64, filename string, audio io.Reader) (*types.Answer, error) {
	if err := s.checkAnswerTarget(ctx, elderID, questionID); err != nil {
		return nil, err
	}

	text, err := s.transcribe(ctx, filename, audio)
	if err != nil {
		return nil, err
	}

	answer, err := s.store.CreateAnswer(ctx, types.NewAnswer{
		ElderID:      elderID,
		QuestionID:   questionID,
		Response:     text,
		ResponseDate: s.today(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("audio answer saved",
		"action", "audio_answer",
		"elder_id", elderID,
		"answer_id", answer.ID,
	)
	return answer, nil
}

// ManualAnswer stores a typed answer. An empty response date means today.
func (s *Service) ManualAnswer(ctx context.Context, in types.NewAnswer) (*types.Answer, error) {
	in.Response = strings.TrimSpace(in.Response)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if errs := validation.ValidateText("response", in.Response, maxResponseLength); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}
	if in.ResponseDate == "" {
		in.ResponseDate = s.today()
	}
	if err := s.checkAnswerTarget(ctx, in.ElderID, in.QuestionID); err != nil {
		return nil, err
	}
	return s.store.CreateAnswer(ctx, in)
}

// ReAnswer replaces an answer's response with a new transcription and moves
// its date to today.
func (s *Service) ReAnswer(ctx context.Context, answerID int64, filename string, audio io.Reader) (*types.Answer, error) {
	if _, err := s.store.GetAnswer(ctx, answerID); err != nil {
		return nil, err
	}

	text, err := s.transcribe(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateAnswerResponse(ctx, answerID, text, s.today())
}

func (s *Service) checkAnswerTarget(ctx context.Context, elderID, questionID int64) error {
	if _, err := s.store.GetElder(ctx, elderID); err != nil {
		return err
	}
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	return nil
}

func (s *Service) transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	text, err := call(ctx, s, "transcribe", func(ctx context.Context) (string, error) {
		return s.transcriber.Transcribe(ctx, filename, audio)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
