package api

import (
	"net/http"

	"github.com/hyperengineering/carelog/internal/types"
)

// ListGuides handles GET /guides
func (h *Handler) ListGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := h.journal.ListGuides(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, guides)
}

// CreateGuide handles POST /guides/create_with_questions
func (h *Handler) CreateGuide(w http.ResponseWriter, r *http.Request) {
	var req types.CreateGuideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	guide, err := h.journal.CreateGuide(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, guide)
}

// FinishGuide handles PATCH /guides/finish/{id}
func (h *Handler) FinishGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	guide, err := h.journal.FinishGuide(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, guide)
}

// GuideQuestions handles GET /guides/{id}/questions
func (h *Handler) GuideQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	questions, err := h.journal.GuideQuestions(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, questions)
}
