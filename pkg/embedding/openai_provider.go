package embedding

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"knowledge-hub-be/pkg/httpjson"
)

var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

type openAIEmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewOpenAIProvider embeds with the OpenAI embeddings endpoint. dimensions 0 means the
// model's native length; a different value is requested from text-embedding-3 models.
func NewOpenAIProvider(apiKey, baseURL, model string, dimensions int, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	native, ok := openAIModelDimensions[model]
	if !ok {
		native = 1536
	}
	if dimensions <= 0 {
		dimensions = native
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		client:     httpjson.NewClient(timeout),
	}
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	req := openAIEmbeddingRequest{Model: p.model, Input: []string{text}}
	if p.dimensions != openAIModelDimensions[p.model] && strings.HasPrefix(p.model, "text-embedding-3") {
		req.Dimensions = p.dimensions
	}

	var resp openAIEmbeddingResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := httpjson.Post(ctx, p.client, "openai embeddings", p.baseURL+"/embeddings", headers, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai embeddings: empty data")
	}
	return ToFloat32(resp.Data[0].Embedding), nil
}
