// Package embedding converts text chunks into fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrProvider indicates a transport, auth, or quota failure at the
	// embedding provider. Retryable by the orchestrator.
	ErrProvider = errors.New("embedding provider request failed")

	// ErrDimensionMismatch indicates the provider returned vectors of a
	// different dimensionality than configured. This is a configuration
	// error and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Provider generates embeddings for a single batch of texts. Implementations
// must return exactly one vector per input text, in input order. Batch size
// limits are enforced by the Embedder, not the provider.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// toFloat32 converts a provider's float64 vector to float32 for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
