package factory

import (
	"errors"

	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/ai"
	"knowledge-hub-be/pkg/embedding"
	"knowledge-hub-be/pkg/embedding/jina"
	"knowledge-hub-be/pkg/llm"
	llmfactory "knowledge-hub-be/pkg/llm/factory"
)

// DefaultDimensions is the vector length declared by variants without native embeddings
// when EMBEDDING_DIMENSIONS is unset.
const DefaultDimensions = 1536

// NewProvider builds the configured variant. Unknown names are rejected; a hosted variant
// with missing credentials degrades to offline.
func NewProvider(cfg config.AIConfig, log logger.ILogger) (ai.Provider, error) {
	fallbackDims := cfg.EmbeddingDimensions
	if fallbackDims <= 0 {
		fallbackDims = DefaultDimensions
	}

	variant := cfg.Provider
	if variant == "" {
		variant = ai.VariantOffline
	}

	if variant == ai.VariantOffline {
		return ai.NewOfflineProvider(fallbackDims), nil
	}

	settings, err := completionSettings(cfg, variant)
	if err != nil {
		return nil, err
	}
	chat, err := llmfactory.NewLLMProvider(variant, settings)
	if errors.Is(err, llm.ErrMissingCredentials) {
		log.Warn("AIProvider", "Credentials missing, falling back to offline provider", map[string]interface{}{
			"provider": variant,
		})
		return ai.NewOfflineProvider(fallbackDims), nil
	}
	if err != nil {
		return nil, err
	}

	embedder := newEmbedder(cfg, variant, log)
	return ai.NewCompositeProvider(variant, chat, embedder, fallbackDims), nil
}

func completionSettings(cfg config.AIConfig, variant string) (llmfactory.Settings, error) {
	s := llmfactory.Settings{Timeout: cfg.RequestTimeout}
	switch variant {
	case ai.VariantOpenAI:
		s.APIKey, s.BaseURL, s.Model = cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel
	case ai.VariantGemini:
		s.APIKey, s.Model = cfg.GoogleGeminiKey, cfg.GeminiModel
	case ai.VariantClaude:
		s.APIKey, s.Model = cfg.AnthropicKey, cfg.AnthropicModel
	case ai.VariantOllama:
		s.BaseURL, s.Model = cfg.OllamaBaseURL, cfg.OllamaModel
	case ai.VariantHuggingFace:
		s.APIKey, s.BaseURL, s.Model = cfg.HuggingFaceKey, cfg.HuggingFaceURL, cfg.HuggingFaceModel
	default:
		return s, errors.New("unsupported AI provider: " + variant)
	}
	return s, nil
}

// newEmbedder picks the EMBEDDING_PROVIDER override, else the variant's native endpoint.
// Claude and Hugging Face have none.
func newEmbedder(cfg config.AIConfig, variant string, log logger.ILogger) embedding.EmbeddingProvider {
	source := cfg.EmbeddingProvider
	if source == "" {
		source = variant
	}

	switch source {
	case ai.VariantOpenAI:
		if cfg.OpenAIKey == "" {
			break
		}
		return embedding.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbeddingModel, cfg.EmbeddingDimensions, cfg.RequestTimeout)
	case ai.VariantGemini:
		if cfg.GoogleGeminiKey == "" {
			break
		}
		return embedding.NewGeminiProvider(cfg.GoogleGeminiKey, cfg.GeminiEmbeddingModel, cfg.RequestTimeout)
	case ai.VariantOllama:
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaEmbeddingModel, cfg.RequestTimeout)
	case "jina":
		if cfg.JinaKey == "" {
			break
		}
		return jina.NewJinaProvider(cfg.JinaKey, cfg.RequestTimeout)
	default:
		return nil
	}

	log.Warn("AIProvider", "Embedding credentials missing, vectors will use fallback", map[string]interface{}{
		"embedding_provider": source,
	})
	return nil
}
