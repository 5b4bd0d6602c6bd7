package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arcline/docrag/internal/rag"
)

// Flows is the subset of the pipeline the tool handlers need.
type Flows interface {
	Ingest(ctx context.Context, req rag.IngestRequest) (rag.UpsertResult, error)
	Query(ctx context.Context, req rag.QueryRequest) (rag.QueryResult, error)
}

// makeAskHandler creates the ask_docs tool handler. It runs the full query
// flow: embed the question, search the vector store, and generate an answer
// grounded in the retrieved contexts.
func makeAskHandler(flows Flows) func(
	context.Context, *mcp.CallToolRequest, AskDocsInput,
) (*mcp.CallToolResult, AskDocsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskDocsInput) (
		*mcp.CallToolResult, AskDocsOutput, error,
	) {
		if input.Question == "" {
			return nil, AskDocsOutput{}, fmt.Errorf("question must not be empty")
		}

		result, err := flows.Query(ctx, rag.QueryRequest{
			Question: input.Question,
			TopK:     input.TopK,
		})
		if err != nil {
			return nil, AskDocsOutput{}, fmt.Errorf("query failed: %w", err)
		}

		return nil, AskDocsOutput{
			Answer:      result.Answer,
			Sources:     result.Sources,
			NumContexts: result.NumContexts,
		}, nil
	}
}

// makeIngestHandler creates the ingest_pdf tool handler.
func makeIngestHandler(flows Flows) func(
	context.Context, *mcp.CallToolRequest, IngestPDFInput,
) (*mcp.CallToolResult, IngestPDFOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestPDFInput) (
		*mcp.CallToolResult, IngestPDFOutput, error,
	) {
		if input.Path == "" {
			return nil, IngestPDFOutput{}, fmt.Errorf("path must not be empty")
		}

		result, err := flows.Ingest(ctx, rag.IngestRequest{
			PDFPath:  input.Path,
			SourceID: input.SourceID,
		})
		if err != nil {
			return nil, IngestPDFOutput{}, fmt.Errorf("ingest failed: %w", err)
		}

		return nil, IngestPDFOutput{Ingested: result.Ingested}, nil
	}
}
