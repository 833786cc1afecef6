package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/ai"
)

type fakeProvider struct {
	classification *ai.Classification
	classifyErr    error
	vector         []float32
	embedErr       error
	embeds         bool
	dims           int
	onClassify     func()

	lastClassifyInput string
	classifyCalls     int
	embedCalls        int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Classify(ctx context.Context, text string) (*ai.Classification, error) {
	f.classifyCalls++
	f.lastClassifyInput = text
	if f.onClassify != nil {
		f.onClassify()
	}
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return f.classification, nil
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if !f.embeds {
		return nil, apperror.ErrEmbeddingUnsupported
	}
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.vector, nil
}

func (f *fakeProvider) SupportsEmbedding() bool { return f.embeds }
func (f *fakeProvider) Dimensions() int { return f.dims }

func newTestEnrichment(p ai.Provider) IEnrichmentService {
	return NewEnrichmentService(p, 0, logger.NewNopLogger())
}

func TestClassifyAndTag_TruncatesInput(t *testing.T) {
	p := &fakeProvider{classification: &ai.Classification{Category: "Work", Tags: []string{"a"}}, dims: 3}
	svc := newTestEnrichment(p)

	svc.ClassifyAndTag(context.Background(), strings.Repeat("é", 1500))

	assert.Equal(t, MaxClassificationInput, len([]rune(p.lastClassifyInput)))
}

func TestClassifyAndTag_CleansTags(t *testing.T) {
	p := &fakeProvider{classification: &ai.Classification{Category: "Work", Tags: []string{" plan ", "", "plan", "q3"}}, dims: 3}

	res := newTestEnrichment(p).ClassifyAndTag(context.Background(), "x")

	assert.Equal(t, "Work", res.Category)
	assert.Equal(t, []string{"plan", "q3"}, res.Tags)
	assert.False(t, res.Fallback)
}

func TestClassifyAndTag_FallbackOnProviderError(t *testing.T) {
	p := &fakeProvider{classifyErr: errors.New("boom"), dims: 3}

	res := newTestEnrichment(p).ClassifyAndTag(context.Background(), "x")

	assert.Equal(t, FallbackCategory, res.Category)
	assert.Equal(t, []string{}, res.Tags)
	assert.True(t, res.Fallback)
}

func TestGenerateEmbedding(t *testing.T) {
	tests := []struct {
		name         string
		provider     *fakeProvider
		wantFallback bool
	}{
		{"native", &fakeProvider{embeds: true, vector: []float32{0.1, 0.2, 0.3}, dims: 3}, false},
		{"unsupported", &fakeProvider{embeds: false, dims: 3}, true},
		{"provider error", &fakeProvider{embeds: true, embedErr: errors.New("503"), dims: 3}, true},
		{"wrong dimensions", &fakeProvider{embeds: true, vector: []float32{1, 2}, dims: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestEnrichment(tt.provider).GenerateEmbedding(context.Background(), "x")
			assert.Equal(t, tt.wantFallback, res.Fallback)
			assert.Len(t, res.Vector, 3)
			if !tt.wantFallback {
				assert.Equal(t, tt.provider.vector, res.Vector)
			}
		})
	}
}

func TestGenerateEmbedding_UnsupportedSkipsProvider(t *testing.T) {
	p := &fakeProvider{dims: 1536}
	res := newTestEnrichment(p).GenerateEmbedding(context.Background(), "x")

	assert.Zero(t, p.embedCalls)
	assert.Len(t, res.Vector, 1536)
	for _, v := range res.Vector {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestEnrich(t *testing.T) {
	p := &fakeProvider{
		classification: &ai.Classification{Category: "Ideas", Tags: []string{"x"}},
		embeds:         true,
		vector:         []float32{1, 0},
		dims:           2,
	}

	e, err := newTestEnrichment(p).Enrich(context.Background(), "idea")

	require.NoError(t, err)
	assert.Equal(t, "Ideas", e.Category)
	assert.Equal(t, []string{"x"}, e.Tags)
	assert.Equal(t, []float32{1, 0}, e.Embedding)
	assert.False(t, e.FallbackCategory)
	assert.False(t, e.FallbackEmbedding)
}

func TestEnrich_CancelledContext(t *testing.T) {
	p := &fakeProvider{classification: &ai.Classification{Category: "Ideas"}, embeds: true, vector: []float32{1}, dims: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := newTestEnrichment(p).Enrich(ctx, "idea")

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, e)
	assert.Equal(t, FallbackCategory, e.Category)
	assert.Nil(t, e.Embedding)
}

func TestEnrichmentService_Throttles(t *testing.T) {
	p := &fakeProvider{classification: &ai.Classification{Category: "A"}, dims: 1}
	svc := NewEnrichmentService(p, 0.001, logger.NewNopLogger())

	// the first call spends the only token
	first := svc.ClassifyAndTag(context.Background(), "x")
	assert.False(t, first.Fallback)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	second := svc.ClassifyAndTag(ctx, "x")
	assert.True(t, second.Fallback)
	assert.Equal(t, 1, p.classifyCalls)
}
