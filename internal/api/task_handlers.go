package api

import (
	"net/http"
)

// WeeklyTasks handles GET /tasks?year&week_number
func (h *Handler) WeeklyTasks(w http.ResponseWriter, r *http.Request) {
	year, week, ok := weekParams(w, r)
	if !ok {
		return
	}
	tasks, err := h.journal.WeeklyTasks(r.Context(), year, week)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tasks)
}

// ThisWeekTasks handles GET /tasks/this_week
func (h *Handler) ThisWeekTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.journal.ThisWeekTasks(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tasks)
}

// ElderTask handles GET /tasks/elders/{elder_id}?year&week_number
func (h *Handler) ElderTask(w http.ResponseWriter, r *http.Request) {
	elderID, ok := pathID(w, r, "elder_id")
	if !ok {
		return
	}
	year, week, ok := weekParams(w, r)
	if !ok {
		return
	}
	task, err := h.journal.WeeklyTask(r.Context(), elderID, year, week)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}
