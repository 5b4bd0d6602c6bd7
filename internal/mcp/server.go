package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with its pipeline dependency.
type Server struct {
	server *mcp.Server
	flows  Flows
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(flows Flows) *Server {
	impl := &mcp.Implementation{
		Name:    "docrag-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_docs",
		Description: "Ask a question about the indexed documents. Retrieves the most relevant chunks and generates an answer grounded in them, with source attribution.",
	}, makeAskHandler(flows))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_pdf",
		Description: "Ingest a PDF document into the index: extract text, chunk it, embed the chunks, and upsert them into the vector store. Re-ingesting the same source updates it in place.",
	}, makeIngestHandler(flows))

	return &Server{server: server, flows: flows}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
