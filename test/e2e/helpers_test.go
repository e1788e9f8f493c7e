package e2e

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/carelog/internal/api"
	"github.com/hyperengineering/carelog/internal/artifact"
	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/journal"
	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/pkg/client"
)

// weekTen is a Wednesday inside week 10 of 2024 (Monday 2024-03-04).
var weekTen = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

// clock is shared by the store and the journal so that created_at and
// response_date agree.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// vectors embeds known responses to fixed unit vectors.
type vectors map[string][]float32

func (v vectors) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := v[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func (vectors) ModelName() string { return "e2e-embedding" }

// scriptedAI answers every assistant capability deterministically.
type scriptedAI struct{}

func (scriptedAI) Summarize(ctx context.Context, text string) (string, error) {
	return "Diary: " + strings.ReplaceAll(text, "\n", " "), nil
}

func (scriptedAI) GenerateTitle(ctx context.Context, text string) (string, error) {
	return "A Week at Home", nil
}

func (scriptedAI) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	return []string{"family", "walk"}, nil
}

func (scriptedAI) FollowUpQuestion(ctx context.Context, history []assistant.QA) (string, error) {
	return "Who did you walk with?", nil
}

func (scriptedAI) GenerateImage(ctx context.Context, prompt string) (*assistant.Image, error) {
	return &assistant.Image{Data: []byte(prompt), ContentType: "image/png", Extension: ".png"}, nil
}

func (scriptedAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	b, err := io.ReadAll(audio)
	return string(b), err
}

func (scriptedAI) Speak(ctx context.Context, text string) (*assistant.Audio, error) {
	return &assistant.Audio{Data: []byte(text), ContentType: "audio/mpeg"}, nil
}

type env struct {
	client  *client.Client
	clock   *clock
	vectors vectors
	baseURL string
}

// newEnv starts a carelog server over a fresh database and returns a
// client bound to it.
func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	clk := &clock{now: weekTen}

	st, err := store.NewSQLiteStore(filepath.Join(dir, "carelog.db"), store.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	images, err := artifact.NewLocalStorage(filepath.Join(dir, "images"), "/static/images")
	if err != nil {
		t.Fatalf("image storage: %v", err)
	}

	vec := vectors{}
	ai := scriptedAI{}
	svc := journal.New(journal.Deps{
		Store:       st,
		Embedder:    vec,
		Writer:      ai,
		Illustrator: ai,
		Transcriber: ai,
		Speaker:     ai,
		Artifacts:   images,
		Clock:       clk.Now,
		Timeout:     5 * time.Second,
		Concurrency: 4,
	})
	router := api.NewRouter(api.NewHandler(svc, "e2e"), api.RouterOptions{
		StaticDir:    images.Dir(),
		StaticPrefix: images.Prefix(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return &env{client: c, clock: clk, vectors: vec, baseURL: srv.URL}
}

func (e *env) elder(t *testing.T, name string) *client.Elder {
	t.Helper()
	el, err := e.client.CreateElder(context.Background(), client.NewElder{
		Name:      name,
		BirthDate: "1936-04-12",
		Gender:    client.GenderFemale,
		CareLevel: "4",
	})
	if err != nil {
		t.Fatalf("create elder: %v", err)
	}
	return el
}

func (e *env) question(t *testing.T, text string) *client.Question {
	t.Helper()
	q, err := e.client.CreateQuestion(context.Background(), text)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func (e *env) answer(t *testing.T, elderID, questionID int64, response, date string) *client.Answer {
	t.Helper()
	a, err := e.client.ManualAnswer(context.Background(), client.NewAnswer{
		ElderID:      elderID,
		QuestionID:   questionID,
		Response:     response,
		ResponseDate: date,
	})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	return a
}

func (e *env) studiedGuide(t *testing.T, elderID int64, questionIDs ...int64) *client.ActivityGuide {
	t.Helper()
	ctx := context.Background()
	g, err := e.client.CreateGuide(ctx, client.CreateGuideRequest{
		ElderID:     elderID,
		Title:       "weekly activity",
		QuestionIDs: questionIDs,
	})
	if err != nil {
		t.Fatalf("create guide: %v", err)
	}
	g, err = e.client.FinishGuide(ctx, g.ID)
	if err != nil {
		t.Fatalf("finish guide: %v", err)
	}
	return g
}
