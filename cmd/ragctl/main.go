// Package main provides the ragctl CLI for one-shot pipeline operations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arcline/docrag/internal/chunker"
	"github.com/arcline/docrag/internal/config"
	"github.com/arcline/docrag/internal/embedding"
	"github.com/arcline/docrag/internal/llm"
	"github.com/arcline/docrag/internal/pdf"
	"github.com/arcline/docrag/internal/rag"
	"github.com/arcline/docrag/internal/storage"
	"github.com/arcline/docrag/internal/workflow"
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Document pipeline management tool",
	Long:  "CLI for ingesting PDF documents into Qdrant and querying them",
}

var (
	ingestSource string
	queryTopK    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf-path>",
	Short: "Ingest a PDF document into the index",
	Long: `Extracts text from the PDF, chunks it, embeds the chunks, and upserts
them into Qdrant. Re-ingesting the same source updates it in place.

Environment variables:
  QDRANT_HOST     Qdrant hostname (default: localhost)
  QDRANT_PORT     Qdrant gRPC port (default: 6334)
  GEMINI_API_KEY  Gemini API key for embeddings and answers (required)
  EMBED_PROVIDER  Embedding backend, gemini or openai (default: gemini)`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question about the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var statusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Show the state of a workflow run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "stable source identifier (defaults to the path)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of context chunks to retrieve")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	pipeline, cleanup, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipeline.Ingest(ctx, rag.IngestRequest{
		PDFPath:  args[0],
		SourceID: ingestSource,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Println("Ingest complete!")
	fmt.Printf("  Chunks: %d\n", result.Ingested)
	fmt.Printf("  Run: %s\n", result.RunID)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pipeline, cleanup, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipeline.Query(ctx, rag.QueryRequest{
		Question: args[0],
		TopK:     queryTopK,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range result.Sources {
			fmt.Printf("  - %s\n", source)
		}
	}
	fmt.Printf("\n(%d contexts, run %s)\n", result.NumContexts, result.RunID)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	checkpoints, err := workflow.NewSQLiteStore(cfg.CheckpointDSN)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	info, err := workflow.NewEngine(checkpoints, slog.Default()).RunInfo(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run:     %s\n", info.ID)
	fmt.Printf("Flow:    %s\n", info.Flow)
	fmt.Printf("Status:  %s\n", info.Status)
	if info.CurrentStep != "" {
		fmt.Printf("Step:    %s\n", info.CurrentStep)
	}
	if info.Error != "" {
		fmt.Printf("Error:   %s\n", info.Error)
	}
	fmt.Printf("Created: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated: %s\n", info.UpdatedAt.Format(time.RFC3339))
	return nil
}

// buildPipeline assembles the full pipeline from environment configuration.
// The returned cleanup closes the store connections.
func buildPipeline(ctx context.Context) (*rag.Pipeline, func(), error) {
	cfg := config.FromEnv()
	logger := slog.Default()

	store, err := storage.NewQdrantStorage(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, cfg.EmbedDimension)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	var provider embedding.Provider
	switch cfg.EmbedProvider {
	case "openai":
		provider, err = embedding.NewOpenAIProvider(cfg.OpenAIEmbedModel, cfg.EmbedDimension)
	case "gemini", "":
		provider, err = embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiEmbedModel, cfg.EmbedDimension)
	default:
		err = fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	embedder := embedding.NewEmbedder(provider, cfg.EmbedDimension, cfg.EmbedBatchSize, cfg.EmbedBatchDelay)

	generator, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiLLMModel)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	checkpoints, err := workflow.NewSQLiteStore(cfg.CheckpointDSN)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	pipeline := rag.NewPipeline(
		pdf.NewLoader(),
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		store,
		generator,
		workflow.NewEngine(checkpoints, logger),
		cfg.TopK,
		logger,
	)

	cleanup := func() {
		checkpoints.Close()
		store.Close()
	}
	return pipeline, cleanup, nil
}
