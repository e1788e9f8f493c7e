package journal

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

const maxQuestionLength = 1000

// randomPrompts seeds RandomQuestion.
var randomPrompts = []string{
	"What is your happiest memory?",
	"Can you describe your favorite vacation?",
	"What hobby do you enjoy the most?",
	"Who has had the most influence on your life?",
	"What are you most proud of?",
}

// ListQuestions returns every question.
func (s *Service) ListQuestions(ctx context.Context) ([]types.Question, error) {
	return s.store.ListQuestions(ctx)
}

// Question returns one question.
func (s *Service) Question(ctx context.Context, id int64) (*types.Question, error) {
	return s.store.GetQuestion(ctx, id)
}

// CreateQuestion stores a new question. Text already in use is a conflict.
func (s *Service) CreateQuestion(ctx context.Context, in types.NewQuestion) (*types.Question, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if errs := validation.ValidateText("text", in.Text, maxQuestionLength); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}
	return s.store.CreateQuestion(ctx, in.Text)
}

// RandomQuestion returns one of the built-in prompts, creating it on first use.
func (s *Service) RandomQuestion(ctx context.Context) (*types.Question, error) {
	return s.store.GetOrCreateQuestion(ctx, randomPrompts[rand.IntN(len(randomPrompts))])
}

// FollowUpQuestion drafts a new question from the elder's latest answers to
// the given questions and stores it.
func (s *Service) FollowUpQuestion(ctx context.Context, req types.FollowUpRequest) (*types.FollowUpResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetElder(ctx, req.ElderID); err != nil {
		return nil, err
	}

	history, _, err := s.latestAnswers(ctx, req.ElderID, req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNoAnswers
	}

	text, err := call(ctx, s, "follow_up_question", func(ctx context.Context) (string, error) {
		return s.writer.FollowUpQuestion(ctx, history)
	})
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ExternalServiceError{Service: "follow_up_question", Err: assistant.ErrEmptyReply}
	}

	q, err := s.store.GetOrCreateQuestion(ctx, text)
	if err != nil {
		return nil, err
	}
	s.logger.Info("follow-up question generated",
		"action", "follow_up_question",
		"elder_id", req.ElderID,
		"question_id", q.ID,
	)
	return &types.FollowUpResponse{GeneratedQuestion: q.Text, QuestionID: q.ID}, nil
}

// QuestionSpeech reads a question aloud.
func (s *Service) QuestionSpeech(ctx context.Context, id int64) (*assistant.Audio, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	return call(ctx, s, "text_to_speech", func(ctx context.Context) (*assistant.Audio, error) {
		return s.speaker.Speak(ctx, q.Text)
	})
}

// RecordQuestions lists the questions an existing record was built from.
func (s *Service) RecordQuestions(ctx context.Context, recordID int64) ([]types.Question, error) {
	if _, err := s.store.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	return s.store.QuestionsForRecord(ctx, recordID)
}
