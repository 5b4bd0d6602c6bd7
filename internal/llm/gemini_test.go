package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_RequestAndResponseShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "What is chunking?")
		assert.InDelta(t, 0.2, req.GenerationConfig.Temperature, 1e-9)
		assert.Equal(t, 1024, req.GenerationConfig.MaxOutputTokens)

		resp := map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]any{
							{"text": "Chunking splits documents into segments."},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := &GeminiClient{
		apiKey:  "test-key",
		model:   "gemini-2.5-flash",
		baseURL: server.URL,
		client:  server.Client(),
	}

	answer, err := client.Generate(context.Background(), "What is chunking?")
	require.NoError(t, err)
	assert.Equal(t, "Chunking splits documents into segments.", answer)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := &GeminiClient{
		apiKey:  "test-key",
		model:   "gemini-2.5-flash",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := client.Generate(context.Background(), "question")
	assert.ErrorIs(t, err, ErrInference)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := &GeminiClient{
		apiKey:  "test-key",
		model:   "gemini-2.5-flash",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := client.Generate(context.Background(), "question")
	assert.ErrorIs(t, err, ErrInference)
}
