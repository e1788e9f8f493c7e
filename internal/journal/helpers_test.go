package journal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
)

// testClock is shared by the store and the service.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeEmbedder maps texts to fixed vectors. Unknown texts get [1, 0].
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	block   bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	err, block := f.err, f.block
	v, ok := f.vectors[text]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		v = []float32{1, 0}
	}
	return v, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embedding" }

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWriter struct {
	mu          sync.Mutex
	summary     string
	title       string
	keywords    []string
	followUp    string
	summarizeIn string
	historyIn   []assistant.QA
	summaryErr  error
	titleErr    error
	calls       int
}

func (f *fakeWriter) Summarize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.summarizeIn = text
	return f.summary, f.summaryErr
}

func (f *fakeWriter) GenerateTitle(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.title, f.titleErr
}

func (f *fakeWriter) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.keywords, nil
}

func (f *fakeWriter) FollowUpQuestion(ctx context.Context, history []assistant.QA) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.historyIn = history
	return f.followUp, nil
}

type fakeIllustrator struct {
	prompt string
	err    error
}

func (f *fakeIllustrator) GenerateImage(ctx context.Context, prompt string) (*assistant.Image, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &assistant.Image{Data: []byte("png"), ContentType: "image/png", Extension: ".png"}, nil
}

type fakeTranscriber struct {
	text     string
	err      error
	filename string
	audio    []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	f.filename = filename
	f.audio, _ = io.ReadAll(audio)
	return f.text, f.err
}

type fakeSpeaker struct{}

func (fakeSpeaker) Speak(ctx context.Context, text string) (*assistant.Audio, error) {
	return &assistant.Audio{Data: []byte("mp3:" + text), ContentType: "audio/mpeg"}, nil
}

// fakeArtifacts keeps artifacts in memory.
type fakeArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
	n       int
}

func (f *fakeArtifacts) Put(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.n++
	ref := fmt.Sprintf("/static/images/%d%s", f.n, ext)
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[ref] = data
	return ref, nil
}

func (f *fakeArtifacts) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

// failingRecordStore fails the record transaction.
type failingRecordStore struct {
	store.Store
	err error
}

func (f failingRecordStore) CreateRecord(ctx context.Context, in types.NewRecord) (*types.Record, error) {
	return nil, f.err
}

type fixture struct {
	svc         *Service
	store       *store.SQLiteStore
	clock       *testClock
	embedder    *fakeEmbedder
	writer      *fakeWriter
	illustrator *fakeIllustrator
	transcriber *fakeTranscriber
	artifacts   *fakeArtifacts
}

// newFixture builds a service over a fresh database. The clock starts on
// Wednesday 2024-03-06, inside week 10 of 2024 (Monday 2024-03-04).
func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"), store.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		store:       st,
		clock:       clock,
		embedder:    &fakeEmbedder{vectors: map[string][]float32{}},
		writer:      &fakeWriter{summary: "A pleasant week.", title: "Spring Days", keywords: []string{"garden", "family"}, followUp: "What did you plant?"},
		illustrator: &fakeIllustrator{},
		transcriber: &fakeTranscriber{text: "transcribed"},
		artifacts:   &fakeArtifacts{},
	}
	deps := Deps{
		Store:       st,
		Embedder:    f.embedder,
		Writer:      f.writer,
		Illustrator: f.illustrator,
		Transcriber: f.transcriber,
		Speaker:     fakeSpeaker{},
		Artifacts:   f.artifacts,
		Clock:       clock.Now,
		Timeout:     time.Second,
		Concurrency: 2,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = New(deps)
	return f
}

func (f *fixture) elder(t *testing.T, name string) *types.Elder {
	t.Helper()
	e, err := f.store.CreateElder(context.Background(), types.NewElder{
		Name:      name,
		BirthDate: "1940-05-17",
		Gender:    types.GenderMale,
		CareLevel: "2",
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) question(t *testing.T, text string) *types.Question {
	t.Helper()
	q, err := f.store.CreateQuestion(context.Background(), text)
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, elderID, questionID int64, response, date string) *types.Answer {
	t.Helper()
	a, err := f.store.CreateAnswer(context.Background(), types.NewAnswer{
		ElderID:      elderID,
		QuestionID:   questionID,
		Response:     response,
		ResponseDate: date,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) guide(t *testing.T, elderID int64, studied bool, questionIDs ...int64) *types.ActivityGuide {
	t.Helper()
	g, err := f.store.CreateGuide(context.Background(), types.CreateGuideRequest{
		ElderID:     elderID,
		Title:       "guide",
		QuestionIDs: questionIDs,
	})
	require.NoError(t, err)
	if studied {
		g, err = f.store.FinishGuide(context.Background(), g.ID)
		require.NoError(t, err)
	}
	return g
}

func (f *fixture) record(t *testing.T, elderID int64) *types.Record {
	t.Helper()
	r, err := f.store.CreateRecord(context.Background(), types.NewRecord{
		ElderID: elderID,
		Title:   "t",
		Content: "c",
	})
	require.NoError(t, err)
	return r
}

// at moves the clock for the duration of fn.
func (f *fixture) at(ts time.Time, fn func()) {
	prev := f.clock.Now()
	f.clock.Set(ts)
	defer f.clock.Set(prev)
	fn()
}

func audio(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}
