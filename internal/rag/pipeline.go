package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arcline/docrag/internal/chunker"
	"github.com/arcline/docrag/internal/embedding"
	"github.com/arcline/docrag/internal/pointid"
	"github.com/arcline/docrag/internal/storage"
	"github.com/arcline/docrag/internal/workflow"
)

// Pipeline wires the RAG components into durable flows. Flow invocations
// are independent and may run concurrently; the only shared mutable state
// is the vector store, where per-point-id overwrite semantics make
// concurrent writes safe.
type Pipeline struct {
	loader    Loader
	chunker   *chunker.Chunker
	embedder  Embedder
	store     VectorStore
	generator Generator
	engine    *workflow.Engine
	topK      int
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline with the given components. defaultTopK
// falls back to 5 when non-positive.
func NewPipeline(
	loader Loader,
	chunks *chunker.Chunker,
	embedder Embedder,
	store VectorStore,
	generator Generator,
	engine *workflow.Engine,
	defaultTopK int,
	logger *slog.Logger,
) *Pipeline {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		loader:    loader,
		chunker:   chunks,
		embedder:  embedder,
		store:     store,
		generator: generator,
		engine:    engine,
		topK:      defaultTopK,
		logger:    logger,
	}
}

// Engine exposes the workflow engine for run inspection.
func (p *Pipeline) Engine() *workflow.Engine {
	return p.engine
}

// Ingest runs the ingest flow: load-and-chunk, then embed-and-upsert.
// Re-ingesting the same source overwrites its existing points, never
// duplicates them.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (UpsertResult, error) {
	run, err := p.engine.StartRun(ctx, FlowIngest)
	if err != nil {
		return UpsertResult{}, err
	}

	result, err := p.runIngest(ctx, run, req)
	if err != nil {
		_ = run.Fail(ctx, err)
		return UpsertResult{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if err := run.Complete(ctx); err != nil {
		return UpsertResult{}, err
	}
	result.RunID = run.ID
	return result, nil
}

func (p *Pipeline) runIngest(ctx context.Context, run *workflow.Run, req IngestRequest) (UpsertResult, error) {
	chunksAndSource, err := workflow.Step(ctx, run, StepLoadAndChunk,
		func(ctx context.Context) (ChunkAndSource, error) {
			blocks, err := p.loader.Load(req.PDFPath)
			if err != nil {
				// Missing or unparseable documents don't get better on retry.
				return ChunkAndSource{}, workflow.Fatal(err)
			}

			chunks, err := p.chunker.Chunk(strings.Join(blocks, "\n\n"))
			if err != nil {
				return ChunkAndSource{}, workflow.Fatal(err)
			}

			sourceID := req.SourceID
			if sourceID == "" {
				sourceID = req.PDFPath
			}

			p.logger.Info("document chunked", "source", sourceID, "chunks", len(chunks))
			return ChunkAndSource{Chunks: chunks, SourceID: sourceID}, nil
		})
	if err != nil {
		return UpsertResult{}, err
	}

	return workflow.Step(ctx, run, StepEmbedAndUpsert,
		func(ctx context.Context) (UpsertResult, error) {
			vectors, err := p.embedder.Embed(ctx, chunksAndSource.Chunks)
			if err != nil {
				return UpsertResult{}, classify(err)
			}

			ids := pointid.ForChunks(chunksAndSource.SourceID, len(chunksAndSource.Chunks))
			payloads := make([]storage.Payload, len(chunksAndSource.Chunks))
			for i, chunk := range chunksAndSource.Chunks {
				payloads[i] = storage.Payload{
					Source: chunksAndSource.SourceID,
					Text:   chunk,
				}
			}

			if err := p.store.Upsert(ctx, ids, vectors, payloads); err != nil {
				return UpsertResult{}, classify(err)
			}

			p.logger.Info("chunks upserted", "source", chunksAndSource.SourceID, "points", len(ids))
			return UpsertResult{Ingested: len(chunksAndSource.Chunks)}, nil
		})
}

// Query runs the query flow: embed-and-search, then llm-answer. When search
// yields no usable contexts the flow short-circuits with a canned answer
// instead of invoking the model.
func (p *Pipeline) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	run, err := p.engine.StartRun(ctx, FlowQuery)
	if err != nil {
		return QueryResult{}, err
	}

	result, err := p.runQuery(ctx, run, req)
	if err != nil {
		_ = run.Fail(ctx, err)
		return QueryResult{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if err := run.Complete(ctx); err != nil {
		return QueryResult{}, err
	}
	result.RunID = run.ID
	return result, nil
}

func (p *Pipeline) runQuery(ctx context.Context, run *workflow.Run, req QueryRequest) (QueryResult, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = p.topK
	}

	found, err := workflow.Step(ctx, run, StepEmbedAndSearch,
		func(ctx context.Context) (storage.SearchResult, error) {
			vectors, err := p.embedder.Embed(ctx, []string{req.Question})
			if err != nil {
				return storage.SearchResult{}, classify(err)
			}

			result, err := p.store.Search(ctx, vectors[0], topK)
			if err != nil {
				return storage.SearchResult{}, classify(err)
			}

			p.logger.Info("search complete", "contexts", len(result.Contexts), "sources", len(result.Sources))
			return result, nil
		})
	if err != nil {
		return QueryResult{}, err
	}

	answer, err := workflow.Step(ctx, run, StepLLMAnswer,
		func(ctx context.Context) (string, error) {
			if len(found.Contexts) == 0 {
				return noContextAnswer, nil
			}
			return p.generator.Generate(ctx, buildPrompt(req.Question, found.Contexts))
		})
	if err != nil {
		return QueryResult{}, err
	}

	sources := found.Sources
	if sources == nil {
		sources = []string{}
	}
	return QueryResult{
		Answer:      answer,
		Sources:     sources,
		NumContexts: len(found.Contexts),
	}, nil
}

// classify marks configuration and schema errors as fatal so the workflow
// engine fails immediately instead of burning its retry budget.
func classify(err error) error {
	if errors.Is(err, embedding.ErrDimensionMismatch) ||
		errors.Is(err, storage.ErrDimensionMismatch) ||
		errors.Is(err, storage.ErrSchemaConflict) {
		return workflow.Fatal(err)
	}
	return err
}
