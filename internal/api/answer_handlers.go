package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

// maxAudioUpload matches the transcription provider's file size limit.
const maxAudioUpload = 25 << 20

// ListAnswers handles GET /answers
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.journal.ListAnswers(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, answers)
}

// QuestionAnswers handles GET /answers/question/{question_id}
func (h *Handler) QuestionAnswers(w http.ResponseWriter, r *http.Request) {
	qid, ok := pathID(w, r, "question_id")
	if !ok {
		return
	}
	answers, err := h.journal.QuestionAnswers(r.Context(), qid)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, answers)
}

// AudioAnswer handles POST /answers (multipart: elder_id, question_id, audio)
func (h *Handler) AudioAnswer(w http.ResponseWriter, r *http.Request) {
	if !parseAudioForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	var p intParams
	elderID := p.get("elder_id", r.FormValue("elder_id"))
	questionID := p.get("question_id", r.FormValue("question_id"))
	file, header, ok := audioFile(w, r, &p)
	if !ok {
		return
	}
	defer file.Close()

	answer, err := h.journal.AudioAnswer(r.Context(), elderID, questionID, header.Filename, file)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, answer)
}

// ManualAnswer handles POST /answers/manual
func (h *Handler) ManualAnswer(w http.ResponseWriter, r *http.Request) {
	var req types.NewAnswer
	if !decodeJSON(w, r, &req) {
		return
	}
	answer, err := h.journal.ManualAnswer(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, answer)
}

// ReAnswer handles POST /answers/re_answer/{id} (multipart: audio)
func (h *Handler) ReAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !parseAudioForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	var p intParams
	file, header, ok := audioFile(w, r, &p)
	if !ok {
		return
	}
	defer file.Close()

	answer, err := h.journal.ReAnswer(r.Context(), id, header.Filename, file)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, answer)
}

func parseAudioForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, r, http.StatusRequestEntityTooLarge, "Audio file too large")
			return false
		}
		WriteProblem(w, r, http.StatusBadRequest, "Expected multipart/form-data body")
		return false
	}
	return true
}

// audioFile opens the "audio" part. Earlier parse errors in p are reported
// together with a missing file.
func audioFile(w http.ResponseWriter, r *http.Request, p *intParams) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		p.c.Add(&validation.ValidationError{Field: "audio", Message: "is required"})
	}
	if !p.ok(w, r) {
		if file != nil {
			file.Close()
		}
		return nil, nil, false
	}
	return file, header, true
}
