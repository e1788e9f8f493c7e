package store

import (
	"context"
	"time"

	"github.com/hyperengineering/carelog/internal/types"
)

// Store defines the persistence contract for the journal.
//
// Time ranges are half-open [from, to). Date ranges over response_date are
// inclusive YYYY-MM-DD strings. List methods return an empty slice, never nil.
type Store interface {
	// Elders
	ListElders(ctx context.Context) ([]types.Elder, error)
	GetElder(ctx context.Context, id int64) (*types.Elder, error)
	CreateElder(ctx context.Context, in types.NewElder) (*types.Elder, error)
	ElderKeywords(ctx context.Context, elderID int64) ([]types.KeywordPreference, error)
	SetKeywordPreference(ctx context.Context, elderID, keywordID int64, preferred bool) (*types.KeywordPreference, error)

	// Questions
	ListQuestions(ctx context.Context) ([]types.Question, error)
	GetQuestion(ctx context.Context, id int64) (*types.Question, error)
	CreateQuestion(ctx context.Context, text string) (*types.Question, error)
	GetOrCreateQuestion(ctx context.Context, text string) (*types.Question, error)
	QuestionsForRecord(ctx context.Context, recordID int64) ([]types.Question, error)
	QuestionsForGuide(ctx context.Context, guideID int64) ([]types.Question, error)

	// Answers
	ListAnswers(ctx context.Context) ([]types.Answer, error)
	AnswersForQuestion(ctx context.Context, questionID int64) ([]types.Answer, error)
	GetAnswer(ctx context.Context, id int64) (*types.Answer, error)
	CreateAnswer(ctx context.Context, in types.NewAnswer) (*types.Answer, error)
	UpdateAnswerResponse(ctx context.Context, id int64, response, responseDate string) (*types.Answer, error)
	LatestAnswer(ctx context.Context, elderID, questionID int64) (*types.Answer, error)
	AnswersBetween(ctx context.Context, elderID, questionID int64, fromDate, toDate string) ([]types.Answer, error)

	// Records
	ListRecords(ctx context.Context) ([]types.Record, error)
	RecordsForElder(ctx context.Context, elderID int64) ([]types.Record, error)
	GetRecord(ctx context.Context, id int64) (*types.Record, error)
	CreateRecord(ctx context.Context, in types.NewRecord) (*types.Record, error)
	LinkKeyword(ctx context.Context, recordID, keywordID int64) error
	CountRecords(ctx context.Context, elderID int64, from, to time.Time) (int, error)

	// Activity guides
	ListGuides(ctx context.Context) ([]types.ActivityGuide, error)
	GetGuide(ctx context.Context, id int64) (*types.ActivityGuide, error)
	CreateGuide(ctx context.Context, in types.CreateGuideRequest) (*types.ActivityGuide, error)
	FinishGuide(ctx context.Context, id int64) (*types.ActivityGuide, error)
	GuideCounts(ctx context.Context, elderID int64, from, to time.Time) (total, studied int, err error)
	StudiedGuides(ctx context.Context, elderID int64, from, to time.Time) ([]types.ActivityGuide, error)

	// Tasks
	UpsertTask(ctx context.Context, task types.Task) (*types.Task, error)
	GetTask(ctx context.Context, elderID int64, year, week int) (*types.Task, error)

	// Reports
	SaveReport(ctx context.Context, report types.Report, analyses []types.Analysis) (*types.Report, error)
	GetReport(ctx context.Context, elderID int64, year, week int) (*types.Report, error)

	Stats(ctx context.Context) (*types.Stats, error)
	Close() error
}
