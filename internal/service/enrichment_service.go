package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/ai"
	"knowledge-hub-be/pkg/embedding"
	"knowledge-hub-be/pkg/utils"

	"golang.org/x/time/rate"
)

const (
	// MaxClassificationInput is how many characters of a note the classifier sees.
	MaxClassificationInput = 1000

	FallbackCategory = "Uncategorized"
)

type IEnrichmentService interface {
	// ClassifyAndTag never fails; provider trouble yields the Uncategorized fallback.
	ClassifyAndTag(ctx context.Context, text string) *entity.ClassificationResult
	// GenerateEmbedding never fails; provider trouble yields a random vector of Dimensions() length.
	GenerateEmbedding(ctx context.Context, text string) *entity.EmbeddingResult
	// Enrich runs both steps. It only returns an error when ctx ends, together with whatever
	// was produced before that.
	Enrich(ctx context.Context, text string) (*entity.Enrichment, error)
	ProviderName() string
	SupportsEmbedding() bool
	Dimensions() int
}

type enrichmentService struct {
	provider ai.Provider
	limiter  *rate.Limiter
	logger   logger.ILogger
	random   func() float32
}

// NewEnrichmentService wraps provider. requestsPerSecond <= 0 disables throttling.
func NewEnrichmentService(provider ai.Provider, requestsPerSecond float64, log logger.ILogger) IEnrichmentService {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	return &enrichmentService{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   log,
		random:   rand.Float32,
	}
}

func (s *enrichmentService) ProviderName() string {
	return s.provider.Name()
}

func (s *enrichmentService) SupportsEmbedding() bool {
	return s.provider.SupportsEmbedding()
}

func (s *enrichmentService) Dimensions() int {
	return s.provider.Dimensions()
}

func (s *enrichmentService) ClassifyAndTag(ctx context.Context, text string) *entity.ClassificationResult {
	input := utils.TruncateRunes(text, MaxClassificationInput)

	if err := s.limiter.Wait(ctx); err != nil {
		return s.classificationFallback(err)
	}

	c, err := s.provider.Classify(ctx, input)
	if err != nil {
		return s.classificationFallback(err)
	}

	return &entity.ClassificationResult{
		Category: c.Category,
		Tags:     utils.CleanTags(c.Tags),
	}
}

func (s *enrichmentService) classificationFallback(cause error) *entity.ClassificationResult {
	s.logger.Warn("Enrichment", "Classification failed, using fallback", map[string]interface{}{
		"provider": s.provider.Name(),
		"error":    cause.Error(),
	})
	return &entity.ClassificationResult{Category: FallbackCategory, Tags: []string{}, Fallback: true}
}

func (s *enrichmentService) GenerateEmbedding(ctx context.Context, text string) *entity.EmbeddingResult {
	if !s.provider.SupportsEmbedding() {
		return s.embeddingFallback(nil)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return s.embeddingFallback(err)
	}

	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return s.embeddingFallback(err)
	}
	if err := embedding.CheckDimensions(vec, s.provider.Dimensions()); err != nil {
		return s.embeddingFallback(err)
	}
	return &entity.EmbeddingResult{Vector: vec}
}

func (s *enrichmentService) embeddingFallback(cause error) *entity.EmbeddingResult {
	if cause != nil && !errors.Is(cause, apperror.ErrEmbeddingUnsupported) {
		s.logger.Warn("Enrichment", "Embedding failed, using random vector", map[string]interface{}{
			"provider": s.provider.Name(),
			"error":    cause.Error(),
		})
	}

	vec := make([]float32, s.provider.Dimensions())
	for i := range vec {
		vec[i] = s.random()
	}
	return &entity.EmbeddingResult{Vector: vec, Fallback: true}
}

func (s *enrichmentService) Enrich(ctx context.Context, text string) (*entity.Enrichment, error) {
	classification := s.ClassifyAndTag(ctx, text)
	result := &entity.Enrichment{
		Category:         classification.Category,
		Tags:             classification.Tags,
		FallbackCategory: classification.Fallback,
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	emb := s.GenerateEmbedding(ctx, text)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	result.Embedding = emb.Vector
	result.FallbackEmbedding = emb.Fallback
	return result, nil
}
