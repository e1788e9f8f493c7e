package api

import (
	"net/http"

	"github.com/hyperengineering/carelog/internal/types"
)

// ListElders handles GET /elders
func (h *Handler) ListElders(w http.ResponseWriter, r *http.Request) {
	elders, err := h.journal.ListElders(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, elders)
}

// GetElder handles GET /elders/{id}
func (h *Handler) GetElder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	elder, err := h.journal.Elder(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, elder)
}

// CreateElder handles POST /elders
func (h *Handler) CreateElder(w http.ResponseWriter, r *http.Request) {
	var req types.NewElder
	if !decodeJSON(w, r, &req) {
		return
	}
	elder, err := h.journal.CreateElder(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, elder)
}

// ElderKeywords handles GET /elders/{id}/keywords
func (h *Handler) ElderKeywords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	prefs, err := h.journal.ElderKeywords(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, prefs)
}

// SetKeywordPreference handles PATCH /elders/{id}/keywords/{keyword_id}
func (h *Handler) SetKeywordPreference(w http.ResponseWriter, r *http.Request) {
	elderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	keywordID, ok := pathID(w, r, "keyword_id")
	if !ok {
		return
	}
	var req types.PreferenceUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	pref, err := h.journal.SetKeywordPreference(r.Context(), elderID, keywordID, req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pref)
}
