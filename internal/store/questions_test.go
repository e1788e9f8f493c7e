package store

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/carelog/internal/types"
)

func TestQuestions_CreateDuplicateConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	q := mustQuestion(t, s, "What did you eat today?")
	if q.ID == 0 || q.IsReported {
		t.Errorf("CreateQuestion() = %+v", q)
	}

	_, err := s.CreateQuestion(ctx, "What did you eat today?")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateQuestion() error = %v, want ErrConflict", err)
	}

	all, err := s.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListQuestions() len = %d, want 1", len(all))
	}
}

func TestGetOrCreateQuestion(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateQuestion(ctx, "Who visited you?")
	if err != nil {
		t.Fatalf("GetOrCreateQuestion() error = %v", err)
	}
	second, err := s.GetOrCreateQuestion(ctx, "Who visited you?")
	if err != nil {
		t.Fatalf("GetOrCreateQuestion() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
}

func TestGetQuestion_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetQuestion(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQuestion() error = %v, want ErrNotFound", err)
	}
}

func TestQuestionsForRecordAndGuide(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	e := mustElder(t, s, "Kim")
	q1 := mustQuestion(t, s, "Q1")
	q2 := mustQuestion(t, s, "Q2")

	rec, err := s.CreateRecord(ctx, types.NewRecord{ElderID: e.ID, Title: "t", QuestionIDs: []int64{q2.ID, q1.ID}})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	qs, err := s.QuestionsForRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("QuestionsForRecord() error = %v", err)
	}
	if len(qs) != 2 || qs[0].ID != q2.ID || qs[1].ID != q1.ID {
		t.Errorf("QuestionsForRecord() = %+v, want input order", qs)
	}

	g, err := s.CreateGuide(ctx, types.CreateGuideRequest{ElderID: e.ID, Title: "g", QuestionIDs: []int64{q1.ID}})
	if err != nil {
		t.Fatalf("CreateGuide() error = %v", err)
	}
	qs, err = s.QuestionsForGuide(ctx, g.ID)
	if err != nil {
		t.Fatalf("QuestionsForGuide() error = %v", err)
	}
	if len(qs) != 1 || qs[0].Text != "Q1" {
		t.Errorf("QuestionsForGuide() = %+v", qs)
	}

	qs, err = s.QuestionsForGuide(ctx, 999)
	if err != nil || len(qs) != 0 {
		t.Errorf("QuestionsForGuide(unknown) = %v, %v; want empty", qs, err)
	}
}
