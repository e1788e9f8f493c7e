package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Journal is the set of operations served over HTTP. Implemented by
// journal.Service.
type Journal interface {
	Stats(ctx context.Context) (*types.Stats, error)
	EmbeddingModel() string

	ListElders(ctx context.Context) ([]types.Elder, error)
	Elder(ctx context.Context, id int64) (*types.Elder, error)
	CreateElder(ctx context.Context, in types.NewElder) (*types.Elder, error)
	ElderKeywords(ctx context.Context, elderID int64) ([]types.KeywordPreference, error)
	SetKeywordPreference(ctx context.Context, elderID, keywordID int64, in types.PreferenceUpdate) (*types.KeywordPreference, error)

	ListRecords(ctx context.Context) ([]types.Record, error)
	ElderRecords(ctx context.Context, elderID int64) ([]types.Record, error)
	Record(ctx context.Context, id int64) (*types.Record, error)
	CreateRecord(ctx context.Context, req types.CreateRecordRequest) (*types.Record, error)

	ListQuestions(ctx context.Context) ([]types.Question, error)
	Question(ctx context.Context, id int64) (*types.Question, error)
	CreateQuestion(ctx context.Context, in types.NewQuestion) (*types.Question, error)
	RandomQuestion(ctx context.Context) (*types.Question, error)
	FollowUpQuestion(ctx context.Context, req types.FollowUpRequest) (*types.FollowUpResponse, error)
	QuestionSpeech(ctx context.Context, id int64) (*assistant.Audio, error)
	RecordQuestions(ctx context.Context, recordID int64) ([]types.Question, error)

	ListGuides(ctx context.Context) ([]types.ActivityGuide, error)
	CreateGuide(ctx context.Context, req types.CreateGuideRequest) (*types.ActivityGuide, error)
	FinishGuide(ctx context.Context, id int64) (*types.ActivityGuide, error)
	GuideQuestions(ctx context.Context, guideID int64) ([]types.Question, error)

	ListAnswers(ctx context.Context) ([]types.Answer, error)
	QuestionAnswers(ctx context.Context, questionID int64) ([]types.Answer, error)
	AudioAnswer(ctx context.Context, elderID, questionID int64, filename string, audio io.Reader) (*types.Answer, error)
	ManualAnswer(ctx context.Context, in types.NewAnswer) (*types.Answer, error)
	ReAnswer(ctx context.Context, answerID int64, filename string, audio io.Reader) (*types.Answer, error)

	WeeklyTask(ctx context.Context, elderID int64, year, week int) (*types.Task, error)
	WeeklyTasks(ctx context.Context, year, week int) ([]types.Task, error)
	ThisWeekTasks(ctx context.Context) ([]types.Task, error)

	BuildReport(ctx context.Context, elderID int64, year, week int) (*types.Report, error)
	Report(ctx context.Context, elderID int64, year, week int) (*types.Report, error)
}

// Handler implements the API handlers
type Handler struct {
	journal Journal
	version string
}

// NewHandler creates a new Handler.
func NewHandler(j Journal, version string) *Handler {
	return &Handler{
		journal: j,
		version: version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.journal.Stats(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, types.HealthResponse{
		Status:         "healthy",
		Version:        h.version,
		EmbeddingModel: h.journal.EmbeddingModel(),
		Stats:          *stats,
	})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LoggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter, writing a 422 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		WriteProblemWithErrors(w, r, "Invalid path parameter", []validation.ValidationError{{
			Field:   name,
			Message: "must be a positive integer",
		}})
		return 0, false
	}
	return id, true
}

// intParams parses required integer query or form values.
type intParams struct {
	c validation.Collector
}

func (p *intParams) get(field, value string) int64 {
	if value == "" {
		p.c.Add(&validation.ValidationError{Field: field, Message: "is required"})
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		p.c.Add(&validation.ValidationError{Field: field, Message: "must be an integer"})
		return 0
	}
	return n
}

// ok writes a 422 when any value failed to parse.
func (p *intParams) ok(w http.ResponseWriter, r *http.Request) bool {
	if p.c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid parameters", p.c.Errors())
		return false
	}
	return true
}

// weekParams reads year and week_number from the query string.
func weekParams(w http.ResponseWriter, r *http.Request) (year, week int, ok bool) {
	var p intParams
	q := r.URL.Query()
	y := p.get("year", q.Get("year"))
	wk := p.get("week_number", q.Get("week_number"))
	if !p.ok(w, r) {
		return 0, 0, false
	}
	return int(y), int(wk), true
}
