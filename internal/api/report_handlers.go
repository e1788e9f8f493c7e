package api

import (
	"net/http"
)

// reportParams reads elder_id, year and week_number from the query string.
func reportParams(w http.ResponseWriter, r *http.Request) (elderID int64, year, week int, ok bool) {
	var p intParams
	q := r.URL.Query()
	elderID = p.get("elder_id", q.Get("elder_id"))
	y := p.get("year", q.Get("year"))
	wk := p.get("week_number", q.Get("week_number"))
	if !p.ok(w, r) {
		return 0, 0, 0, false
	}
	return elderID, int(y), int(wk), true
}

// GetReport handles GET /reports?elder_id&year&week_number
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	elderID, year, week, ok := reportParams(w, r)
	if !ok {
		return
	}
	report, err := h.journal.Report(r.Context(), elderID, year, week)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// BuildReport handles POST /reports?elder_id&year&week_number
func (h *Handler) BuildReport(w http.ResponseWriter, r *http.Request) {
	elderID, year, week, ok := reportParams(w, r)
	if !ok {
		return
	}
	report, err := h.journal.BuildReport(r.Context(), elderID, year, week)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
