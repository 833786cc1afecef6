package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-hub-be/pkg/llm"
)

func TestClaudeProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.System, "classify")
		assert.Contains(t, req.System, "JSON")
		require.Len(t, req.Messages, 1)
		assert.Equal(t, 1024, req.MaxTokens)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"category\":\"Health\",\"tags\":[\"gym\"]}"}]}`))
	}))
	defer srv.Close()

	p, err := NewClaudeProvider("key", srv.URL, "", 0)
	require.NoError(t, err)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "classify"},
		{Role: "user", Content: "leg day"},
	}, llm.WithJSONMode())

	require.NoError(t, err)
	assert.Equal(t, `{"category":"Health","tags":["gym"]}`, out)
}

func TestClaudeProvider_MissingKey(t *testing.T) {
	_, err := NewClaudeProvider("", "", "", 0)
	assert.ErrorIs(t, err, llm.ErrMissingCredentials)
}
