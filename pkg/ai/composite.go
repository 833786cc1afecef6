package ai

import (
	"context"
	"fmt"

	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/pkg/embedding"
	"knowledge-hub-be/pkg/llm"
)

// CompositeProvider pairs a completion backend with an optional embedder.
type CompositeProvider struct {
	name       string
	chat       llm.LLMProvider
	embedder   embedding.EmbeddingProvider
	dimensions int
}

var _ Provider = (*CompositeProvider)(nil)

// NewCompositeProvider builds a variant. With a nil embedder the variant declares no native
// embedding and reports fallbackDimensions.
func NewCompositeProvider(name string, chat llm.LLMProvider, embedder embedding.EmbeddingProvider, fallbackDimensions int) *CompositeProvider {
	dims := fallbackDimensions
	if embedder != nil {
		dims = embedder.Dimensions()
	}
	return &CompositeProvider{name: name, chat: chat, embedder: embedder, dimensions: dims}
}

func (p *CompositeProvider) Name() string {
	return p.name
}

func (p *CompositeProvider) Classify(ctx context.Context, text string) (*Classification, error) {
	out, err := p.chat.Chat(ctx, BuildClassificationPrompt(text), llm.WithJSONMode(), llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperror.ErrProvider, p.name, err)
	}
	c, err := ParseClassification(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperror.ErrProvider, p.name, err)
	}
	return c, nil
}

func (p *CompositeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.embedder == nil {
		return nil, apperror.ErrEmbeddingUnsupported
	}
	vec, err := p.embedder.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperror.ErrProvider, p.name, err)
	}
	return vec, nil
}

func (p *CompositeProvider) SupportsEmbedding() bool {
	return p.embedder != nil
}

func (p *CompositeProvider) Dimensions() int {
	return p.dimensions
}
