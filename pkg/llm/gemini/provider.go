package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"knowledge-hub-be/pkg/httpjson"
	"knowledge-hub-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
)

type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*GeminiProvider)(nil)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func NewGeminiProvider(apiKey, baseURL, model string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  httpjson.NewClient(timeout),
	}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.model, Temperature: 0.2}, opts...)

	system, rest := llm.SplitSystem(history)
	req := generateRequest{
		Contents: make([]content, 0, len(rest)),
		GenerationConfig: generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	if options.JSONMode {
		req.GenerationConfig.ResponseMimeType = "application/json"
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, options.Model)
	var resp generateResponse
	if err := httpjson.Post(ctx, p.client, "gemini", endpoint, map[string]string{"x-goog-api-key": p.apiKey}, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty candidates")
	}

	var sb strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	return sb.String(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
