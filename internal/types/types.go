package types

import (
	"encoding/json"
	"time"
)

// Gender of an elder.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Elder is a care recipient.
type Elder struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	BirthDate   string    `json:"birth_date"`
	Gender      Gender    `json:"gender"`
	CareLevel   string    `json:"care_level"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewElder is the input type for creating elders.
type NewElder struct {
	Name        string `json:"name" validate:"required,max=255"`
	BirthDate   string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender      Gender `json:"gender" validate:"required,oneof=M F"`
	CareLevel   string `json:"care_level" validate:"required,oneof=1 2 3 4 5"`
	ContactInfo string `json:"contact_info,omitempty" validate:"max=255"`
}

// Question is a prompt shared by every elder.
type Question struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	IsReported bool      `json:"is_reported"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewQuestion is the input type for creating questions.
type NewQuestion struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// Answer is one elder's response to one question on a given date.
type Answer struct {
	ID           int64     `json:"id"`
	QuestionID   int64     `json:"question_id"`
	ElderID      int64     `json:"elder_id"`
	Response     string    `json:"response"`
	ResponseDate string    `json:"response_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAnswer is the input type for recording an answer. ResponseDate defaults
// to today when empty.
type NewAnswer struct {
	ElderID      int64  `json:"elder_id" validate:"required,gt=0"`
	QuestionID   int64  `json:"question_id" validate:"required,gt=0"`
	Response     string `json:"response" validate:"required"`
	ResponseDate string `json:"response_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Record is a generated diary entry.
type Record struct {
	ID        int64     `json:"id"`
	ElderID   int64     `json:"elder_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON ensures nil Keywords marshal as [] not null.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	type Alias Record
	return json.Marshal(Alias(r))
}

// NewRecord is everything needed to persist an assembled record in one
// transaction.
type NewRecord struct {
	ElderID     int64
	Title       string
	Content     string
	ImageURL    string
	Keywords    []string
	QuestionIDs []int64
}

// CreateRecordRequest asks for a record built from the elder's answers.
type CreateRecordRequest struct {
	ElderID     int64   `json:"elder_id" validate:"required,gt=0"`
	QuestionIDs []int64 `json:"question_ids" validate:"required,min=1,dive,gt=0"`
}

// Keyword is a unique tag text.
type Keyword struct {
	ID      int64  `json:"id"`
	Keyword string `json:"keyword"`
}

// KeywordPreference records whether an elder likes a keyword.
type KeywordPreference struct {
	ElderID     int64  `json:"elder_id"`
	KeywordID   int64  `json:"keyword_id"`
	Keyword     string `json:"keyword"`
	IsPreferred bool   `json:"is_preferred"`
}

// PreferenceUpdate toggles a keyword preference.
type PreferenceUpdate struct {
	IsPreferred *bool `json:"is_preferred" validate:"required"`
}

// ActivityGuide is a lesson plan bundling questions for an elder.
type ActivityGuide struct {
	ID          int64     `json:"id"`
	ElderID     int64     `json:"elder_id"`
	Title       string    `json:"title"`
	HaveStudied bool      `json:"have_studied"`
	QuestionIDs []int64   `json:"question_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateGuideRequest creates a guide linked to existing questions.
type CreateGuideRequest struct {
	ElderID     int64   `json:"elder_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	QuestionIDs []int64 `json:"question_ids" validate:"required,min=1,dive,gt=0"`
}

// TaskStatus is the weekly progress level of an elder.
type TaskStatus int

const (
	TaskIdle         TaskStatus = 0 // nothing beyond the studied guides
	TaskRecorded     TaskStatus = 1 // more records than studied guides
	TaskGuided       TaskStatus = 2 // more guides than studied guides
	TaskAccomplished TaskStatus = 3 // three or more studied guides
)

// Task tracks one elder's progress for one week.
type Task struct {
	ID         int64      `json:"id"`
	ElderID    int64      `json:"elder_id"`
	Year       int        `json:"year"`
	WeekNumber int        `json:"week_number"`
	Status     TaskStatus `json:"status"`
	Iteration  int        `json:"iteration"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Report is the weekly collection of answer analyses for an elder.
type Report struct {
	ID         int64            `json:"id"`
	ElderID    int64            `json:"elder_id"`
	Year       int              `json:"year"`
	WeekNumber int              `json:"week_number"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Analyses   []AnalysisDetail `json:"analyses"`
}

// MarshalJSON ensures nil Analyses marshal as [] not null.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Analyses == nil {
		r.Analyses = []AnalysisDetail{}
	}
	type Alias Report
	return json.Marshal(Alias(r))
}

// Analysis compares the first and last answer to a question within a week.
type Analysis struct {
	ID            int64     `json:"id"`
	ReportID      int64     `json:"report_id"`
	ElderID       int64     `json:"elder_id"`
	QuestionID    int64     `json:"question_id"`
	FirstAnswerID int64     `json:"first_answer_id"`
	LastAnswerID  int64     `json:"last_answer_id"`
	Similarity    float64   `json:"similarity"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnalysisDetail is an Analysis joined with the texts it compares.
type AnalysisDetail struct {
	Analysis
	QuestionText      string `json:"question_text"`
	FirstResponse     string `json:"first_response"`
	FirstResponseDate string `json:"first_response_date"`
	LastResponse      string `json:"last_response"`
	LastResponseDate  string `json:"last_response_date"`
}

// FollowUpRequest asks for a question derived from earlier answers.
type FollowUpRequest struct {
	ElderID     int64   `json:"elder_id" validate:"required,gt=0"`
	QuestionIDs []int64 `json:"question_ids" validate:"required,min=1,dive,gt=0"`
}

// FollowUpResponse carries the generated question.
type FollowUpResponse struct {
	GeneratedQuestion string `json:"generated_question"`
	QuestionID        int64  `json:"question_id"`
}

// Stats holds entity counts.
type Stats struct {
	Elders    int64 `json:"elders"`
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Records   int64 `json:"records"`
	Guides    int64 `json:"guides"`
	Reports   int64 `json:"reports"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	EmbeddingModel string `json:"embedding_model"`
	Stats          Stats  `json:"stats"`
}
