package factory

import (
	"fmt"
	"time"

	"knowledge-hub-be/pkg/llm"
	"knowledge-hub-be/pkg/llm/anthropic"
	"knowledge-hub-be/pkg/llm/gemini"
	"knowledge-hub-be/pkg/llm/huggingface"
	"knowledge-hub-be/pkg/llm/ollama"
	"knowledge-hub-be/pkg/llm/openai"
)

type Settings struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewLLMProvider builds the completion backend for providerType. Hosted backends without
// an API key return llm.ErrMissingCredentials.
func NewLLMProvider(providerType string, s Settings) (llm.LLMProvider, error) {
	var (
		provider llm.LLMProvider
		err      error
	)
	switch providerType {
	case "openai":
		provider, err = asProvider(openai.NewOpenAIProvider(openai.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model, Timeout: s.Timeout}))
	case "gemini":
		provider, err = asProvider(gemini.NewGeminiProvider(s.APIKey, s.BaseURL, s.Model, s.Timeout))
	case "claude":
		provider, err = asProvider(anthropic.NewClaudeProvider(s.APIKey, s.BaseURL, s.Model, s.Timeout))
	case "huggingface":
		provider, err = asProvider(huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model, s.Timeout))
	case "ollama":
		provider = ollama.NewOllamaProvider(s.BaseURL, s.Model, s.Timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// asProvider keeps a failed constructor from leaking a typed nil inside the interface.
func asProvider[T llm.LLMProvider](p T, err error) (llm.LLMProvider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
