package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline/docrag/internal/rag"
)

type fakeFlows struct {
	ingestReq rag.IngestRequest
	ingestRes rag.UpsertResult
	ingestErr error

	queryReq rag.QueryRequest
	queryRes rag.QueryResult
	queryErr error
}

func (f *fakeFlows) Ingest(_ context.Context, req rag.IngestRequest) (rag.UpsertResult, error) {
	f.ingestReq = req
	return f.ingestRes, f.ingestErr
}

func (f *fakeFlows) Query(_ context.Context, req rag.QueryRequest) (rag.QueryResult, error) {
	f.queryReq = req
	return f.queryRes, f.queryErr
}

func TestAskHandler_ReturnsAnswerWithSources(t *testing.T) {
	flows := &fakeFlows{
		queryRes: rag.QueryResult{
			Answer:      "the answer",
			Sources:     []string{"doc1"},
			NumContexts: 3,
		},
	}
	handler := makeAskHandler(flows)

	_, out, err := handler(context.Background(), nil, AskDocsInput{Question: "what?", TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, "the answer", out.Answer)
	assert.Equal(t, []string{"doc1"}, out.Sources)
	assert.Equal(t, 3, out.NumContexts)
	assert.Equal(t, rag.QueryRequest{Question: "what?", TopK: 3}, flows.queryReq)
}

func TestAskHandler_RejectsEmptyQuestion(t *testing.T) {
	handler := makeAskHandler(&fakeFlows{})

	_, _, err := handler(context.Background(), nil, AskDocsInput{})
	assert.Error(t, err)
}

func TestAskHandler_PropagatesFlowError(t *testing.T) {
	flows := &fakeFlows{queryErr: errors.New("store unreachable")}
	handler := makeAskHandler(flows)

	_, _, err := handler(context.Background(), nil, AskDocsInput{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable")
}

func TestIngestHandler_ReportsChunkCount(t *testing.T) {
	flows := &fakeFlows{ingestRes: rag.UpsertResult{Ingested: 7}}
	handler := makeIngestHandler(flows)

	_, out, err := handler(context.Background(), nil, IngestPDFInput{Path: "manual.pdf", SourceID: "manual"})
	require.NoError(t, err)

	assert.Equal(t, 7, out.Ingested)
	assert.Equal(t, rag.IngestRequest{PDFPath: "manual.pdf", SourceID: "manual"}, flows.ingestReq)
}

func TestIngestHandler_RejectsEmptyPath(t *testing.T) {
	handler := makeIngestHandler(&fakeFlows{})

	_, _, err := handler(context.Background(), nil, IngestPDFInput{})
	assert.Error(t, err)
}
