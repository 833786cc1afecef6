package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-hub-be/internal/dto"
	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/search"
	"knowledge-hub-be/pkg/ai"
	"knowledge-hub-be/pkg/events"
)

// vectorProvider embeds by keyword so search order is predictable.
type vectorProvider struct {
	vectors map[string][]float32
}

func (p *vectorProvider) Name() string { return "vectors" }

func (p *vectorProvider) Classify(ctx context.Context, text string) (*ai.Classification, error) {
	return &ai.Classification{Category: "General", Tags: []string{}}, nil
}

func (p *vectorProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := p.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (p *vectorProvider) SupportsEmbedding() bool { return true }
func (p *vectorProvider) Dimensions() int { return 3 }

type noteServiceFixture struct {
	*dispatchFixture
	svc INoteService
}

func newNoteServiceFixture(t *testing.T, provider ai.Provider, executor func(IDispatcher) Executor) *noteServiceFixture {
	f := newDispatchFixture(t)
	enrichment := NewEnrichmentService(provider, 0, logger.NewNopLogger())
	f.dispatcher = NewDispatcher(f.factory, enrichment, f.publisher, logger.NewNopLogger())

	svc := NewNoteService(
		f.factory,
		executor(f.dispatcher),
		enrichment,
		search.NewLinearRanker(enrichment, 0),
		f.publisher,
		logger.NewNopLogger(),
		NoteServiceOptions{DefaultTopK: 2, RetentionDays: 30},
	)
	return &noteServiceFixture{dispatchFixture: f, svc: svc}
}

func inline(d IDispatcher) Executor { return NewInlineExecutor(d) }

func TestNoteService_CreateInline(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)

	res, err := f.svc.Create(context.Background(), &dto.CreateNoteRequest{Content: "Call the bank"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.NoteStatusCompleted), res.Status)
	assert.Equal(t, DispatchModeInline, res.DispatchMode)

	note, err := f.svc.Show(context.Background(), res.Id)
	require.NoError(t, err)
	assert.Equal(t, "General", note.Category)
	assert.Equal(t, []string{"mock_tag"}, note.Tags)
	assert.True(t, note.HasEmbedding)

	assert.Equal(t, []string{events.TypeNoteCreated, events.TypeNoteEnriched}, f.publisher.types())
}

func TestNoteService_CreateRejectsBlank(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)

	_, err := f.svc.Create(context.Background(), &dto.CreateNoteRequest{Content: "  "})

	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.publisher.types())
}

func TestNoteService_CreateQueueDown(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), func(IDispatcher) Executor {
		return NewQueuedExecutor(failingQueue{})
	})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &dto.CreateNoteRequest{Content: "stuck"})
	assert.ErrorIs(t, err, apperror.ErrQueueUnavailable)

	// the note is kept so the stale sweep can dispatch it later
	notes, err := f.repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NoteStatusPending, notes[0].Status)
}

func TestNoteService_ShowUnknown(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)

	_, err := f.svc.Show(context.Background(), 12)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNoteService_ListAndSearch(t *testing.T) {
	provider := &vectorProvider{vectors: map[string][]float32{
		"dogs":        {1, 0, 0},
		"cats":        {0, 1, 0},
		"dogs & cats": {0.7, 0.7, 0},
		"pets":        {0.9, 0.1, 0},
	}}
	f := newNoteServiceFixture(t, provider, inline)
	ctx := context.Background()

	ids := map[string]uint{}
	for _, content := range []string{"dogs", "cats", "dogs & cats"} {
		res, err := f.svc.Create(ctx, &dto.CreateNoteRequest{Content: content})
		require.NoError(t, err)
		ids[content] = res.Id
	}

	all, err := f.svc.List(ctx, &dto.ListNotesRequest{Query: "   "})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids["dogs & cats"], all[0].Id)
	assert.Nil(t, all[0].RelevanceScore)

	found, err := f.svc.List(ctx, &dto.ListNotesRequest{Query: "pets"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, ids["dogs"], found[0].Id)
	assert.Equal(t, ids["dogs & cats"], found[1].Id)
	require.NotNil(t, found[0].RelevanceScore)
	assert.Greater(t, *found[0].RelevanceScore, *found[1].RelevanceScore)

	one, err := f.svc.List(ctx, &dto.ListNotesRequest{Query: "cats", TopK: 1})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, ids["cats"], one[0].Id)
}

func TestNoteService_RecycleBin(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)
	ctx := context.Background()

	var ids []uint
	for _, content := range []string{"a", "b", "c"} {
		res, err := f.svc.Create(ctx, &dto.CreateNoteRequest{Content: content})
		require.NoError(t, err)
		ids = append(ids, res.Id)
	}

	res, err := f.svc.Delete(ctx, &dto.IdsRequest{Ids: []uint{ids[0], ids[1], 999}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Affected)

	active, err := f.svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, ids[2], active[0].Id)

	bin, err := f.svc.ListDeleted(ctx)
	require.NoError(t, err)
	assert.Len(t, bin, 2)

	res, err = f.svc.Restore(ctx, &dto.IdsRequest{Ids: []uint{ids[0]}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)

	res, err = f.svc.HardDelete(ctx, &dto.IdsRequest{Ids: []uint{ids[2]}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)

	res, err = f.svc.EmptyBin(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)

	status, err := f.svc.SystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.NotesByStatus[string(entity.NoteStatusCompleted)])
	assert.Zero(t, status.DeletedNotes)
	assert.Equal(t, "offline", status.Provider)
	assert.False(t, status.SupportsEmbedding)
	assert.Equal(t, 4, status.Dimensions)
	assert.Equal(t, DispatchModeInline, status.DispatchMode)
	assert.Equal(t, 30, status.RetentionDays)

	assert.Contains(t, f.publisher.types(), events.TypeNotesDeleted)
	assert.Contains(t, f.publisher.types(), events.TypeNotesRestored)
	assert.Contains(t, f.publisher.types(), events.TypeNotesPurged)
}

func TestNoteService_Reprocess(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)
	ctx := context.Background()

	note, err := f.repo.Create(ctx, "left pending")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reprocess(ctx, note.Id))
	assert.Equal(t, entity.NoteStatusCompleted, f.get(t, note.Id).Status)

	assert.ErrorIs(t, f.svc.Reprocess(ctx, 999), apperror.ErrNotFound)
}

func TestRetention_Sweep(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)
	ctx := context.Background()

	stale, err := f.repo.Create(ctx, "stuck in pending")
	require.NoError(t, err)
	fresh, err := f.repo.Create(ctx, "just created")
	require.NoError(t, err)

	janitor := NewRetentionService(f.factory, NewInlineExecutor(f.dispatcher), f.publisher, logger.NewNopLogger(),
		RetentionOptions{Days: 30, StaleAfter: time.Minute}).(*retentionService)
	janitor.now = func() time.Time { return time.Now().Add(time.Hour) }

	res, err := janitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Redispatched)
	assert.Zero(t, res.Purged)
	assert.Equal(t, entity.NoteStatusCompleted, f.get(t, stale.Id).Status)
	assert.Equal(t, entity.NoteStatusCompleted, f.get(t, fresh.Id).Status)

	janitor.now = time.Now
	other, err := f.repo.Create(ctx, "new")
	require.NoError(t, err)
	res, err = janitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Redispatched)
	assert.Equal(t, entity.NoteStatusPending, f.get(t, other.Id).Status)
}

func TestRetention_RunDisabled(t *testing.T) {
	f := newNoteServiceFixture(t, ai.NewOfflineProvider(4), inline)
	janitor := NewRetentionService(f.factory, NewInlineExecutor(f.dispatcher), nil, logger.NewNopLogger(), RetentionOptions{Days: 30})

	done := make(chan struct{})
	go func() {
		janitor.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when the interval is zero")
	}
}
