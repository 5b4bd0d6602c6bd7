package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider generates embeddings through the Gemini batchEmbedContents
// endpoint, requesting a fixed output dimensionality per batch.
type GeminiProvider struct {
	apiKey    string
	model     string
	dimension int
	baseURL   string
	client    *http.Client
}

// NewGeminiProvider creates a Gemini embedding provider. Returns an error if
// apiKey is empty.
func NewGeminiProvider(apiKey, model string, dimension int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return &GeminiProvider{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		baseURL:   geminiBaseURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type geminiEmbedRequest struct {
	Requests []geminiEmbedContentRequest `json:"requests"`
}

type geminiEmbedContentRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

// EmbedBatch embeds one batch of texts. Rate-limit responses (HTTP 429) are
// retried with exponential backoff; other failures are permanent at this
// level and surface as ErrProvider for the orchestrator to handle.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := geminiEmbedRequest{
		Requests: make([]geminiEmbedContentRequest, len(texts)),
	}
	for i, text := range texts {
		reqBody.Requests[i] = geminiEmbedContentRequest{
			Model:                "models/" + p.model,
			Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
			OutputDimensionality: p.dimension,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrProvider, err)
	}

	var vectors [][]float32

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/models/%s:batchEmbedContents", p.baseURL, p.model),
			bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", p.apiKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited (status 429)")
		}
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)))
		}

		var result geminiEmbedResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}

		vectors = make([][]float32, len(result.Embeddings))
		for i, emb := range result.Embeddings {
			vectors[i] = toFloat32(emb.Values)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return vectors, nil
}
