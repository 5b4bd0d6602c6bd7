package embedding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBatchSize is the maximum number of texts submitted per provider
// call. The provider API rejects larger batches.
const DefaultBatchSize = 100

// DefaultBatchDelay is the pause between consecutive batch calls. This is a
// deliberate serialization point that keeps sustained throughput under the
// provider's quota; it trades latency for reliability.
const DefaultBatchDelay = 1200 * time.Millisecond

// Embedder batches embedding requests against a Provider, throttling between
// batches and validating vector dimensions. A single Embedder may be shared
// by concurrent flows; the throttle then applies across all of them, which
// is the point — the quota is per API key, not per flow.
type Embedder struct {
	provider  Provider
	batchSize int
	dimension int
	limiter   *rate.Limiter
}

// NewEmbedder creates an Embedder for the given provider and target vector
// dimension. Non-positive batchSize or batchDelay fall back to the defaults.
func NewEmbedder(provider Provider, dimension, batchSize int, batchDelay time.Duration) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}
	return &Embedder{
		provider:  provider,
		batchSize: batchSize,
		dimension: dimension,
		limiter:   rate.NewLimiter(rate.Every(batchDelay), 1),
	}
}

// Embed returns one vector per input text, in input order. The input is
// split into batches of at most the configured batch size; the limiter
// blocks (without busy-waiting) between batches. Embedding a single query
// string goes through this same path with a batch of one.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}

		batchVectors, err := e.provider.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d-%d returned %d vectors for %d texts",
				ErrProvider, i, end, len(batchVectors), len(batch))
		}
		for j, vec := range batchVectors {
			if len(vec) != e.dimension {
				return nil, fmt.Errorf("%w: text %d has %d dimensions, expected %d",
					ErrDimensionMismatch, i+j, len(vec), e.dimension)
			}
		}
		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

// Dimension returns the configured target vector dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}
