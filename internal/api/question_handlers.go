package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hyperengineering/carelog/internal/types"
)

// ListQuestions handles GET /questions
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.journal.ListQuestions(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, questions)
}

// GetQuestion handles GET /questions/{id}
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.journal.Question(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, q)
}

// CreateQuestion handles POST /questions
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req types.NewQuestion
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := h.journal.CreateQuestion(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, q)
}

// RandomQuestion handles POST /questions/random
func (h *Handler) RandomQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.journal.RandomQuestion(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, q)
}

// FollowUpQuestion handles POST /questions/generate_follow_up
func (h *Handler) FollowUpQuestion(w http.ResponseWriter, r *http.Request) {
	var req types.FollowUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.journal.FollowUpQuestion(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// QuestionSpeech handles GET /questions/tts/{id}
func (h *Handler) QuestionSpeech(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	audio, err := h.journal.QuestionSpeech(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="question-%d.mp3"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio.Data); err != nil {
		LoggerFromContext(r.Context()).Warn("failed to write speech", "question_id", id, "error", err)
	}
}

// RecordQuestions handles GET /questions/record/{record_id}/questions
func (h *Handler) RecordQuestions(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, "record_id")
	if !ok {
		return
	}
	questions, err := h.journal.RecordQuestions(r.Context(), recordID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, questions)
}
