package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"knowledge-hub-be/pkg/httpjson"
)

const geminiEmbeddingDimensions = 768

type GeminiProvider struct {
	ApiKey   string
	BaseURL  string
	Model    string
	TaskType string
	client   *http.Client
}

type geminiEmbeddingRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
	TaskType string `json:"taskType,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func NewGeminiProvider(apiKey, model string, timeout time.Duration) *GeminiProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiProvider{
		ApiKey:   apiKey,
		BaseURL:  "https://generativelanguage.googleapis.com/v1",
		Model:    model,
		TaskType: "SEMANTIC_SIMILARITY",
		client:   httpjson.NewClient(timeout),
	}
}

func (p *GeminiProvider) Dimensions() int {
	return geminiEmbeddingDimensions
}

func (p *GeminiProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	req := geminiEmbeddingRequest{Model: "models/" + p.Model, TaskType: p.TaskType}
	req.Content.Parts = []geminiPart{{Text: text}}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, p.Model)
	var resp geminiEmbeddingResponse
	if err := httpjson.Post(ctx, p.client, "gemini embeddings", endpoint, map[string]string{"x-goog-api-key": p.ApiKey}, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, errors.New("gemini embeddings: empty values")
	}
	return resp.Embedding.Values, nil
}
