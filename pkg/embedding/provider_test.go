package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello"}, req.Input)
		assert.Zero(t, req.Dimensions)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "", 0, 0)
	assert.Equal(t, 1536, p.Dimensions())

	vec, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAIProvider_ReducedDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 256, req.Dimensions)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "text-embedding-3-large", 256, 0)
	assert.Equal(t, 256, p.Dimensions())
	_, err := p.Generate(context.Background(), "x")
	require.NoError(t, err)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		var req geminiEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SEMANTIC_SIMILARITY", req.TaskType)
		assert.Equal(t, "note body", req.Content.Parts[0].Text)
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.5,0.5]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("k", "", 0)
	p.BaseURL = srv.URL
	assert.Equal(t, 768, p.Dimensions())

	vec, err := p.Generate(context.Background(), "note body")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestOllamaProvider_GenerateNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic-embed-text:latest", 0)
	assert.Equal(t, 768, p.Dimensions())

	vec, err := p.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOllamaProvider_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "", 0).Generate(context.Background(), "x")
	assert.Error(t, err)
}
