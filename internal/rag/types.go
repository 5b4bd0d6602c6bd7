// Package rag composes chunking, embedding, vector storage, and answer
// generation into the two durable flows: ingest and query.
package rag

import (
	"context"

	"github.com/arcline/docrag/internal/storage"
)

// Flow and step names as persisted in run records.
const (
	FlowIngest = "rag.ingest.pdf"
	FlowQuery  = "rag.query"

	StepLoadAndChunk   = "load-and-chunk"
	StepEmbedAndUpsert = "embed-and-upsert"
	StepEmbedAndSearch = "embed-and-search"
	StepLLMAnswer      = "llm-answer"
)

// IngestRequest triggers the ingest flow. SourceID defaults to PDFPath when
// empty.
type IngestRequest struct {
	PDFPath  string `json:"pdf_path"`
	SourceID string `json:"source_id,omitempty"`
}

// QueryRequest triggers the query flow. TopK defaults to the pipeline's
// configured value when non-positive.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// ChunkAndSource is the checkpointed output of the load-and-chunk step.
type ChunkAndSource struct {
	Chunks   []string `json:"chunks"`
	SourceID string   `json:"source_id"`
}

// UpsertResult is the final result of the ingest flow. RunID identifies the
// workflow run that produced it.
type UpsertResult struct {
	Ingested int    `json:"ingested"`
	RunID    string `json:"run_id,omitempty"`
}

// QueryResult is the final result of the query flow. Sources is never nil.
type QueryResult struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	NumContexts int      `json:"num_contexts"`
	RunID       string   `json:"run_id,omitempty"`
}

// Loader extracts text blocks from a source document.
type Loader interface {
	Load(path string) ([]string, error)
}

// Embedder converts texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists and searches (id, vector, payload) points.
type VectorStore interface {
	Upsert(ctx context.Context, ids []string, vectors [][]float32, payloads []storage.Payload) error
	Search(ctx context.Context, vector []float32, topK int) (storage.SearchResult, error)
}

// Generator produces an answer from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
