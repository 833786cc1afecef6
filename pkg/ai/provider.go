// Package ai is the capability layer over the completion and embedding backends: one
// Provider per configured variant, plus the prompt and the parser for the classification reply.
package ai

import "context"

// Variant names, the closed set accepted by AI_PROVIDER.
const (
	VariantOpenAI      = "openai"
	VariantGemini      = "gemini"
	VariantClaude      = "claude"
	VariantOllama      = "ollama"
	VariantHuggingFace = "huggingface"
	VariantOffline     = "offline"
)

// Classification is the category and tag set of one note.
type Classification struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Provider is what the enrichment service needs from an AI backend.
type Provider interface {
	Name() string
	Classify(ctx context.Context, text string) (*Classification, error)
	// Embed returns apperror.ErrEmbeddingUnsupported when SupportsEmbedding is false.
	Embed(ctx context.Context, text string) ([]float32, error)
	SupportsEmbedding() bool
	// Dimensions is the declared embedding length, also for variants without native embeddings.
	Dimensions() int
}
