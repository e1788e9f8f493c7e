package api

import (
	"net/http"

	"github.com/hyperengineering/carelog/internal/types"
)

// ListRecords handles GET /records
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.journal.ListRecords(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

// ElderRecords handles GET /records/user/{elder_id}
func (h *Handler) ElderRecords(w http.ResponseWriter, r *http.Request) {
	elderID, ok := pathID(w, r, "elder_id")
	if !ok {
		return
	}
	records, err := h.journal.ElderRecords(r.Context(), elderID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

// GetRecord handles GET /records/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	record, err := h.journal.Record(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, record)
}

// CreateRecord handles POST /records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	record, err := h.journal.CreateRecord(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, record)
}
