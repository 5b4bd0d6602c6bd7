// Package server exposes the ingest and query flows as HTTP event endpoints,
// alongside run-status inspection and a health check.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arcline/docrag/internal/rag"
	"github.com/arcline/docrag/internal/workflow"
)

// Flows is the subset of the pipeline the event handlers need.
type Flows interface {
	Ingest(ctx context.Context, req rag.IngestRequest) (rag.UpsertResult, error)
	Query(ctx context.Context, req rag.QueryRequest) (rag.QueryResult, error)
}

// RunReader looks up persisted run state for the /runs endpoint.
type RunReader interface {
	RunInfo(ctx context.Context, id string) (workflow.RunInfo, error)
}

// Server routes flow-triggering events to the pipeline.
type Server struct {
	flows  Flows
	runs   RunReader
	health http.Handler
	logger *slog.Logger
}

// New creates a Server. health may be nil, in which case /health is not
// mounted.
func New(flows Flows, runs RunReader, health http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{flows: flows, runs: runs, health: health, logger: logger}
}

// Register mounts all endpoints on the given mux. The caller may add
// further routes (landing page, MCP transport) on the same mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /events/rag.ingest", s.handleIngest)
	mux.HandleFunc("POST /events/rag.query", s.handleQuery)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	if s.health != nil {
		mux.Handle("GET /health", s.health)
	}
}

// Handler returns a mux with only this server's endpoints mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}
