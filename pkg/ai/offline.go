package ai

import (
	"context"

	"knowledge-hub-be/internal/pkg/apperror"
)

// OfflineProvider answers without any network call. It is the variant used when no AI
// backend is configured or its credentials are missing.
type OfflineProvider struct {
	dimensions int
}

var _ Provider = (*OfflineProvider)(nil)

func NewOfflineProvider(dimensions int) *OfflineProvider {
	return &OfflineProvider{dimensions: dimensions}
}

func (p *OfflineProvider) Name() string {
	return VariantOffline
}

func (p *OfflineProvider) Classify(ctx context.Context, text string) (*Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Classification{Category: "General", Tags: []string{"mock_tag"}}, nil
}

func (p *OfflineProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, apperror.ErrEmbeddingUnsupported
}

func (p *OfflineProvider) SupportsEmbedding() bool {
	return false
}

func (p *OfflineProvider) Dimensions() int {
	return p.dimensions
}
