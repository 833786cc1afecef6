package embedding

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"knowledge-hub-be/pkg/httpjson"
)

// ollamaDimensions lists the embedding models we know the length of; others default to 768.
var ollamaDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// OllamaProvider embeds with a local Ollama model (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  httpjson.NewClient(timeout),
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Dimensions() int {
	if d, ok := ollamaDimensions[strings.SplitN(p.Model, ":", 2)[0]]; ok {
		return d
	}
	return 768
}

func (p *OllamaProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	var resp ollamaEmbeddingResponse
	req := ollamaEmbeddingRequest{Model: p.Model, Prompt: text}
	if err := httpjson.Post(ctx, p.client, "ollama embeddings", p.BaseURL+"/api/embeddings", nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("ollama embeddings: empty vector")
	}
	// Local models return unnormalized vectors
	return Normalize(ToFloat32(resp.Embedding)), nil
}
