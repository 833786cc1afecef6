package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"knowledge-hub-be/pkg/httpjson"
	"knowledge-hub-be/pkg/llm"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*HuggingFaceProvider)(nil)

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
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

func NewHuggingFaceProvider(apiKey, baseURL, model string, timeout time.Duration) (*HuggingFaceProvider, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  httpjson.NewClient(timeout),
	}, nil
}

// Chat ignores JSONMode: not every model behind the router honours response_format, so the
// prompt itself has to ask for JSON.
func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, MaxTokens: 500, Temperature: 0.2}, options...)

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var chatResp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := httpjson.Post(ctx, p.client, "huggingface", p.baseURL+"/chat/completions", headers, reqBody, &chatResp); err != nil {
		return "", err
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("huggingface api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from huggingface api")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
