package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"knowledge-hub-be/pkg/httpjson"
	"knowledge-hub-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*OpenAIProvider)(nil)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  httpjson.NewClient(cfg.Timeout),
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.model, Temperature: 0.2}, opts...)

	req := chatRequest{
		Model:       options.Model,
		Messages:    history,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	if options.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := httpjson.Post(ctx, p.client, "openai", p.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", errors.New("openai: " + resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
