package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"knowledge-hub-be/pkg/httpjson"
	"knowledge-hub-be/pkg/llm"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	anthropicVersion = "2023-06-01"
)

type ClaudeProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*ClaudeProvider)(nil)

type messagesRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClaudeProvider(apiKey, baseURL, model string, timeout time.Duration) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &ClaudeProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  httpjson.NewClient(timeout),
	}, nil
}

// Chat has no native JSON mode; with JSONMode set the reply is steered by a system line.
func (p *ClaudeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.model, Temperature: 0.2, MaxTokens: 1024}, opts...)

	system, rest := llm.SplitSystem(history)
	if options.JSONMode {
		if system != "" {
			system += "\n\n"
		}
		system += "Respond with a single JSON object and nothing else."
	}

	req := messagesRequest{
		Model:       options.Model,
		System:      system,
		Messages:    rest,
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp messagesResponse
	if err := httpjson.Post(ctx, p.client, "anthropic", p.baseURL+"/v1/messages", headers, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", errors.New("anthropic: " + resp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: empty content")
	}
	return sb.String(), nil
}

func (p *ClaudeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
