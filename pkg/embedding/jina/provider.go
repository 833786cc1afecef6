package jina

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"knowledge-hub-be/pkg/embedding"
	"knowledge-hub-be/pkg/httpjson"
)

const dimensions = 768

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey string, timeout time.Duration) *JinaProvider {
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/embeddings",
		model:   "jina-embeddings-v2-base-en",
		client:  httpjson.NewClient(timeout),
	}
}

// WithBaseURL points the provider at another endpoint, used by tests.
func (p *JinaProvider) WithBaseURL(url string) *JinaProvider {
	p.baseURL = url
	return p
}

func (p *JinaProvider) Dimensions() int {
	return dimensions
}

func (p *JinaProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{Model: p.model, Input: []string{text}}

	var jinaResp embeddingResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := httpjson.Post(ctx, p.client, "jina", p.baseURL, headers, reqBody, &jinaResp); err != nil {
		return nil, err
	}

	if jinaResp.Error != nil {
		return nil, fmt.Errorf("jina api returned error: %s", jinaResp.Error.Message)
	}
	if len(jinaResp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings from jina api")
	}

	return jinaResp.Data[0].Embedding, nil
}
