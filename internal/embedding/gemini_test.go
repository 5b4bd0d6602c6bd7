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

func TestGeminiProvider_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-embedding-001:batchEmbedContents", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 2)
		assert.Equal(t, "models/gemini-embedding-001", req.Requests[0].Model)
		assert.Equal(t, "first chunk", req.Requests[0].Content.Parts[0].Text)
		assert.Equal(t, "second chunk", req.Requests[1].Content.Parts[0].Text)
		assert.Equal(t, 4, req.Requests[0].OutputDimensionality)

		resp := map[string]any{
			"embeddings": []map[string]any{
				{"values": []float64{0.1, 0.2, 0.3, 0.4}},
				{"values": []float64{0.5, 0.6, 0.7, 0.8}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := &GeminiProvider{
		apiKey:    "test-key",
		model:     "gemini-embedding-001",
		dimension: 4,
		baseURL:   server.URL,
		client:    server.Client(),
	}

	vectors, err := provider.EmbedBatch(context.Background(), []string{"first chunk", "second chunk"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDelta(t, 0.1, vectors[0][0], 1e-6)
	assert.InDelta(t, 0.8, vectors[1][3], 1e-6)
}

func TestGeminiProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := &GeminiProvider{
		apiKey:    "bad-key",
		model:     "gemini-embedding-001",
		dimension: 4,
		baseURL:   server.URL,
		client:    server.Client(),
	}

	_, err := provider.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrProvider)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider("", "gemini-embedding-001", 4)
	assert.Error(t, err)
}
