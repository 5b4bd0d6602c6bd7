// Package storage owns the Qdrant collection holding embedded chunks.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatchSize bounds the number of points per Qdrant upsert call.
const upsertBatchSize = 100

// QdrantStorage wraps the Qdrant client for a single collection of
// (id, vector, payload) points.
type QdrantStorage struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrantStorage creates a Qdrant client with health validation.
// It performs a health check with retry on startup and fails fast if Qdrant
// is unreachable.
func NewQdrantStorage(host string, port int, collection string, dimension int) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	storage := &QdrantStorage{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}

	ctx := context.Background()
	if err := storage.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return storage, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, exponentialBackoff)
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}

	return nil
}

// EnsureCollection creates the collection with cosine distance if it does not
// exist. Idempotent: an existing collection with the configured dimension is
// a no-op; an existing collection with a different dimension is a fatal
// ErrSchemaConflict and is never retried.
func (s *QdrantStorage) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == s.collection {
			return s.checkCollectionDimension(ctx)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// checkCollectionDimension verifies an existing collection matches the
// configured vector dimension.
func (s *QdrantStorage) checkCollectionDimension(ctx context.Context) error {
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != uint64(s.dimension) {
		return fmt.Errorf("%w: collection %q has dimension %d, configured %d",
			ErrSchemaConflict, s.collection, size, s.dimension)
	}
	return nil
}

// Upsert writes or overwrites points keyed by id. All three slices must have
// equal length. Re-upserting an existing id fully replaces its vector and
// payload. There is no rollback on partial failure: a failed batch leaves
// earlier batches applied, surfaced as ErrWriteFailed.
func (s *QdrantStorage) Upsert(ctx context.Context, ids []string, vectors [][]float32, payloads []Payload) error {
	if len(ids) != len(vectors) || len(ids) != len(payloads) {
		return fmt.Errorf("%w: mismatched lengths: %d ids, %d vectors, %d payloads",
			ErrWriteFailed, len(ids), len(vectors), len(payloads))
	}

	for i, vec := range vectors {
		if len(vec) != s.dimension {
			return fmt.Errorf("%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vec), s.dimension)
		}
	}

	for start := 0; start < len(ids); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(ids))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(ids[i]),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadKeySource: payloads[i].Source,
					payloadKeyText:   payloads[i].Text,
				}),
			})
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("%w: batch %d-%d: %v", ErrWriteFailed, start, end, err)
		}
	}

	return nil
}

// upsertWithRetry performs one upsert call with exponential backoff retry.
func (s *QdrantStorage) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
		})
		return err
	}

	return backoff.Retry(operation, exponentialBackoff)
}

// Search returns up to topK nearest points by cosine similarity and
// reconstructs readable context from their payloads. Points with empty text
// are skipped, so callers may receive fewer than topK contexts. Tie order
// among equally-scored points follows the store's native order and is not
// guaranteed stable.
func (s *QdrantStorage) Search(ctx context.Context, vector []float32, topK int) (SearchResult, error) {
	if len(vector) != s.dimension {
		return SearchResult{}, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	result := SearchResult{
		Contexts: make([]string, 0, len(points)),
		Sources:  make([]string, 0, len(points)),
	}
	seenSources := make(map[string]struct{})

	for _, point := range points {
		payload := point.GetPayload()
		text := payload[payloadKeyText].GetStringValue()
		if text == "" {
			continue
		}
		result.Contexts = append(result.Contexts, text)

		source := payload[payloadKeySource].GetStringValue()
		if _, seen := seenSources[source]; !seen {
			seenSources[source] = struct{}{}
			result.Sources = append(result.Sources, source)
		}
	}

	return result, nil
}

// CountPoints returns the number of points currently in the collection.
func (s *QdrantStorage) CountPoints(ctx context.Context) (uint64, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return info.GetPointsCount(), nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
