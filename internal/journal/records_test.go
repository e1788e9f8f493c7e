package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/validation"
)

func TestCreateRecord_AssemblesFromLatestAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q1 := f.question(t, "What did you do today?")
	q2 := f.question(t, "Who did you see?")
	f.answer(t, e.ID, q1.ID, "Read a book", "2024-03-01")
	f.answer(t, e.ID, q1.ID, "Planted tulips", "2024-03-05")
	f.answer(t, e.ID, q2.ID, "My grandson", "2024-03-05")
	f.writer.keywords = []string{"garden", "family"}

	rec, err := f.svc.CreateRecord(ctx, types.CreateRecordRequest{
		ElderID:     e.ID,
		QuestionIDs: []int64{q2.ID, q1.ID, q2.ID, 999},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Q: Who did you see?\nA: My grandson\nQ: What did you do today?\nA: Planted tulips",
		f.writer.summarizeIn,
	)
	assert.Equal(t, "Spring Days", rec.Title)
	assert.Equal(t, "A pleasant week.", rec.Content)
	assert.Equal(t, []string{"garden", "family"}, rec.Keywords)
	assert.Equal(t, "garden, family", f.illustrator.prompt)
	require.NotNil(t, rec.Image)
	assert.Contains(t, f.artifacts.objects, *rec.Image)

	stored, err := f.svc.Record(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, stored.Title)
	assert.ElementsMatch(t, []string{"garden", "family"}, stored.Keywords)
	require.NotNil(t, stored.Image)
	assert.Equal(t, *rec.Image, *stored.Image)

	questions, err := f.svc.RecordQuestions(ctx, rec.ID)
	require.NoError(t, err)
	var ids []int64
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	assert.ElementsMatch(t, []int64{q1.ID, q2.ID}, ids)

	prefs, err := f.svc.ElderKeywords(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	for _, p := range prefs {
		assert.True(t, p.IsPreferred, "new keywords start preferred")
	}
}

func TestCreateRecord_RepeatedKeywordConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.keywords = []string{"garden", "garden"}

	_, err := f.svc.CreateRecord(ctx, types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	require.ErrorIs(t, err, store.ErrConflict)

	records, err := f.svc.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "the record is rolled back")
	prefs, err := f.svc.ElderKeywords(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, prefs)
	assert.Empty(t, f.artifacts.objects)
	assert.Len(t, f.artifacts.deleted, 1, "the stored image is removed")
}

func TestCreateRecord_CapsKeywords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.keywords = []string{"a", "b", "c", "d", "e", "f", "g"}

	rec, err := f.svc.CreateRecord(ctx, types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, rec.Keywords)
	assert.Equal(t, "a, b, c, d, e", f.illustrator.prompt)

	stored, err := f.svc.Record(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Keywords, 5)
}

func TestCreateRecord_ConfiguredKeywordCap(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.MaxKeywords = 2 })
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.keywords = []string{"a", "b", "c"}

	rec, err := f.svc.CreateRecord(ctx, types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.Keywords)
}

func TestCreateRecord_KeywordsShareRowsAcrossRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	req := types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}}

	_, err := f.svc.CreateRecord(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.CreateRecord(ctx, req)
	require.NoError(t, err)

	prefs, err := f.svc.ElderKeywords(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, prefs, 2, "keywords are unique by text")

	records, err := f.svc.ElderRecords(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCreateRecord_NoAnswers(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")

	_, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{
		ElderID:     e.ID,
		QuestionIDs: []int64{q.ID},
	})
	assert.ErrorIs(t, err, ErrNoAnswers)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, f.writer.calls, "no collaborator is called")
}

func TestCreateRecord_UnknownElder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{
		ElderID:     5,
		QuestionIDs: []int64{1},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateRecord_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{ElderID: 1})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "question_ids", verrs[0].Field)
}

func TestCreateRecord_SummarizeFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.summaryErr = errors.New("rate limited")

	_, err := f.svc.CreateRecord(ctx, types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "summarize", ext.Service)

	records, err := f.svc.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, f.artifacts.objects)
}

func TestCreateRecord_TitleFailure(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.titleErr = errors.New("boom")

	_, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "generate_title", ext.Service)
	assert.Empty(t, f.artifacts.objects)
}

func TestCreateRecord_StoreFailureRemovesImage(t *testing.T) {
	storeErr := errors.New("disk full")
	base := newFixture(t, func(d *Deps) {
		d.Store = failingRecordStore{Store: d.Store, err: storeErr}
	})
	e := base.elder(t, "Ada")
	q := base.question(t, "What did you do today?")
	base.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")

	_, err := base.svc.CreateRecord(context.Background(), types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, base.artifacts.objects)
	assert.Len(t, base.artifacts.deleted, 1)
}

func TestCreateRecord_ArtifactFailure(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.artifacts.putErr = errors.New("bucket missing")

	_, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	assert.ErrorIs(t, err, f.artifacts.putErr)

	records, err := f.svc.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateRecord_EmptyKeywordsUseTitleAsPrompt(t *testing.T) {
	f := newFixture(t)
	e := f.elder(t, "Ada")
	q := f.question(t, "What did you do today?")
	f.answer(t, e.ID, q.ID, "Gardening", "2024-03-05")
	f.writer.keywords = []string{}

	rec, err := f.svc.CreateRecord(context.Background(), types.CreateRecordRequest{ElderID: e.ID, QuestionIDs: []int64{q.ID}})
	require.NoError(t, err)
	assert.Empty(t, rec.Keywords)
	assert.Equal(t, "Spring Days", f.illustrator.prompt)
}

func TestElderRecords_UnknownElder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ElderRecords(context.Background(), 3)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
