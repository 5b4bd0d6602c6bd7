// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Defaults mirror the values the service was tuned with in production.
const (
	DefaultCollection      = "docs"
	DefaultEmbedDimension  = 3072
	DefaultEmbedBatchSize  = 100
	DefaultEmbedBatchDelay = 1200 * time.Millisecond
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultTopK            = 5

	DefaultGeminiEmbedModel = "gemini-embedding-001"
	DefaultGeminiLLMModel   = "gemini-2.5-flash"
	DefaultOpenAIEmbedModel = "text-embedding-3-large"
)

// Config holds all externalized settings for the RAG service.
// Nothing in the pipeline packages reads the environment directly.
type Config struct {
	// Embedding / LLM provider
	EmbedProvider    string // "gemini" or "openai"
	GeminiAPIKey     string
	GeminiEmbedModel string
	GeminiLLMModel   string
	OpenAIEmbedModel string

	// Vector store
	QdrantHost     string
	QdrantPort     int
	Collection     string
	EmbedDimension int

	// Chunking and batching
	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	EmbedBatchDelay time.Duration

	// Query
	TopK int

	// Workflow checkpoint store
	CheckpointDSN string

	// HTTP server
	Port string
}

// FromEnv builds a Config from environment variables, applying defaults
// for anything unset.
func FromEnv() *Config {
	return &Config{
		EmbedProvider:    getEnv("EMBED_PROVIDER", "gemini"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", DefaultGeminiEmbedModel),
		GeminiLLMModel:   getEnv("GEMINI_LLM_MODEL", DefaultGeminiLLMModel),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", DefaultOpenAIEmbedModel),

		QdrantHost:     getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:     getEnvInt("QDRANT_PORT", 6334),
		Collection:     getEnv("QDRANT_COLLECTION", DefaultCollection),
		EmbedDimension: getEnvInt("EMBED_DIMENSION", DefaultEmbedDimension),

		ChunkSize:       getEnvInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		EmbedBatchSize:  getEnvInt("EMBED_BATCH_SIZE", DefaultEmbedBatchSize),
		EmbedBatchDelay: getEnvDuration("EMBED_BATCH_DELAY", DefaultEmbedBatchDelay),

		TopK: getEnvInt("QUERY_TOP_K", DefaultTopK),

		CheckpointDSN: getEnv("CHECKPOINT_DB", "data/docrag.db"),

		Port: getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
