package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// StaticDir, when set, is served under StaticPrefix.
	StaticDir    string
	StaticPrefix string

	// AIRateLimit and AIBurst throttle routes that call the AI provider.
	AIRateLimit float64
	AIBurst     int
}

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	ai := NewRateLimiter(opts.AIRateLimit, opts.AIBurst).Middleware

	r.Get("/health", h.Health)

	r.Route("/elders", func(r chi.Router) {
		r.Get("/", h.ListElders)
		r.Post("/", h.CreateElder)
		r.Get("/{id}", h.GetElder)
		r.Get("/{id}/keywords", h.ElderKeywords)
		r.Patch("/{id}/keywords/{keyword_id}", h.SetKeywordPreference)
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/", h.ListRecords)
		r.With(ai).Post("/", h.CreateRecord)
		r.Get("/user/{elder_id}", h.ElderRecords)
		r.Get("/{id}", h.GetRecord)
	})

	r.Route("/questions", func(r chi.Router) {
		r.Get("/", h.ListQuestions)
		r.Post("/", h.CreateQuestion)
		r.Post("/random", h.RandomQuestion)
		r.With(ai).Post("/generate_follow_up", h.FollowUpQuestion)
		r.With(ai).Get("/tts/{id}", h.QuestionSpeech)
		r.Get("/record/{record_id}/questions", h.RecordQuestions)
		r.Get("/{id}", h.GetQuestion)
	})

	r.Route("/guides", func(r chi.Router) {
		r.Get("/", h.ListGuides)
		r.Post("/create_with_questions", h.CreateGuide)
		r.Patch("/finish/{id}", h.FinishGuide)
		r.Get("/{id}/questions", h.GuideQuestions)
	})

	r.Route("/answers", func(r chi.Router) {
		r.Get("/", h.ListAnswers)
		r.With(ai).Post("/", h.AudioAnswer)
		r.Post("/manual", h.ManualAnswer)
		r.With(ai).Post("/re_answer/{id}", h.ReAnswer)
		r.Get("/question/{question_id}", h.QuestionAnswers)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.GetReport)
		r.With(ai).Post("/", h.BuildReport)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.WeeklyTasks)
		r.Get("/this_week", h.ThisWeekTasks)
		r.Get("/elders/{elder_id}", h.ElderTask)
	})

	if opts.StaticDir != "" {
		prefix := "/" + strings.Trim(opts.StaticPrefix, "/")
		fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	return r
}
