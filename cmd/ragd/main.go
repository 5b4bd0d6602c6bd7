// Package main provides the docrag service entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arcline/docrag/internal/chunker"
	"github.com/arcline/docrag/internal/config"
	"github.com/arcline/docrag/internal/embedding"
	"github.com/arcline/docrag/internal/llm"
	mcpserver "github.com/arcline/docrag/internal/mcp"
	"github.com/arcline/docrag/internal/pdf"
	"github.com/arcline/docrag/internal/rag"
	"github.com/arcline/docrag/internal/server"
	"github.com/arcline/docrag/internal/storage"
	"github.com/arcline/docrag/internal/workflow"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.FromEnv()
	logger := slog.Default()

	// Initialize the vector store
	store, err := storage.NewQdrantStorage(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, cfg.EmbedDimension)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	// Initialize the embedding provider
	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("failed to create embedding provider: %v", err)
	}
	embedder := embedding.NewEmbedder(provider, cfg.EmbedDimension, cfg.EmbedBatchSize, cfg.EmbedBatchDelay)

	// Initialize the answer generator
	generator, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiLLMModel)
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}

	// Initialize the workflow engine over its checkpoint store
	checkpoints, err := workflow.NewSQLiteStore(cfg.CheckpointDSN)
	if err != nil {
		log.Fatalf("failed to open checkpoint store: %v", err)
	}
	defer checkpoints.Close()
	engine := workflow.NewEngine(checkpoints, logger)

	pipeline := rag.NewPipeline(
		pdf.NewLoader(),
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		store,
		generator,
		engine,
		cfg.TopK,
		logger,
	)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(pipeline)

	// Create HTTP server with all endpoints
	mux := http.NewServeMux()
	mux.Handle("/", mcpserver.NewLandingHandler())
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(mcpSrv, nil))
	server.New(pipeline, engine, mcpserver.NewHealthHandler(store), logger).Register(mux)

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve events and MCP over HTTP for remote clients
		addr := "0.0.0.0:" + cfg.Port
		log.Printf("Starting HTTP server on %s (events at /events, MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP endpoints in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Port
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting docrag MCP server (stdio mode)...")
		if err := mcpSrv.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

// newProvider selects the embedding backend from configuration.
func newProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.EmbedProvider {
	case "openai":
		return embedding.NewOpenAIProvider(cfg.OpenAIEmbedModel, cfg.EmbedDimension)
	case "gemini", "":
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiEmbedModel, cfg.EmbedDimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
