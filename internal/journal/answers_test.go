package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

func TestAudioAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "How did you sleep?")
	f.transcriber.text = "  Quite well, thank you.  "

	a, err := f.svc.AudioAnswer(ctx, e.ID, q.ID, "sleep.m4a", audio("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, "Quite well, thank you.", a.Response)
	assert.Equal(t, "2024-03-06", a.ResponseDate)
	assert.Equal(t, "sleep.m4a", f.transcriber.filename)
	assert.Equal(t, []byte("RIFF"), f.transcriber.audio)

	answers, err := f.svc.QuestionAnswers(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, a.ID, answers[0].ID)
}

func TestAudioAnswer_ChecksTargetsBeforeTranscribing(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")

	_, err := f.svc.AudioAnswer(context.Background(), e.ID, 99, "a.wav", audio("x"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, f.transcriber.filename)
}

func TestAudioAnswer_TranscriptionFailure(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	q := f.question(t, "How did you sleep?")
	f.transcriber.err = errors.New("unsupported format")

	_, err := f.svc.AudioAnswer(context.Background(), e.ID, q.ID, "a.wav", audio("x"))
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "transcribe", ext.Service)
}

func TestManualAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "How did you sleep?")

	a, err := f.svc.ManualAnswer(ctx, types.NewAnswer{ElderID: e.ID, QuestionID: q.ID, Response: " fine "})
	require.NoError(t, err)
	assert.Equal(t, "fine", a.Response)
	assert.Equal(t, "2024-03-06", a.ResponseDate, "defaults to today")

	a, err = f.svc.ManualAnswer(ctx, types.NewAnswer{ElderID: e.ID, QuestionID: q.ID, Response: "ok", ResponseDate: "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", a.ResponseDate)
}

func TestManualAnswer_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "How did you sleep?")

	_, err := f.svc.ManualAnswer(ctx, types.NewAnswer{ElderID: e.ID, QuestionID: q.ID, Response: "   "})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.ManualAnswer(ctx, types.NewAnswer{ElderID: e.ID, QuestionID: q.ID, Response: "x", ResponseDate: "06/03/2024"})
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.ManualAnswer(ctx, types.NewAnswer{ElderID: e.ID + 1, QuestionID: q.ID, Response: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "How did you sleep?")
	orig := f.answer(t, e.ID, q.ID, "badly", "2024-03-01")

	f.clock.Set(time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC))
	f.transcriber.text = "better now"

	a, err := f.svc.ReAnswer(ctx, orig.ID, "again.wav", audio("x"))
	require.NoError(t, err)
	assert.Equal(t, orig.ID, a.ID)
	assert.Equal(t, "better now", a.Response)
	assert.Equal(t, "2024-03-08", a.ResponseDate)

	_, err = f.svc.ReAnswer(ctx, 404, "again.wav", audio("x"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestQuestionAnswers_UnknownQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.QuestionAnswers(context.Background(), 12)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListAnswers_Empty(t *testing.T) {
	f := newFixture(t)

	answers, err := f.svc.ListAnswers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)
}
