// Package main provides the MCP server entry point for the research paper
// index.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rishabds7/ai-research-assistant/internal/chunker"
	"github.com/Rishabds7/ai-research-assistant/internal/config"
	"github.com/Rishabds7/ai-research-assistant/internal/embedding"
	mcpserver "github.com/Rishabds7/ai-research-assistant/internal/mcp"
	"github.com/Rishabds7/ai-research-assistant/internal/retrieval"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize storage
	store, err := storage.NewQdrantStore(ctx, cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection, cfg.Embedding.Dimension)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	// Initialize embedding provider
	provider, err := embedding.NewProvider(ctx, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		log.Fatalf("failed to create embedding provider: %v", err)
	}

	// Wire the retrieval pipeline
	splitter := chunker.NewSplitter(
		chunker.WithMaxSize(cfg.Chunking.MaxSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	service := retrieval.NewService(splitter, provider, store, nil,
		retrieval.WithBatchSize(cfg.Retrieval.BatchSize),
	)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Service:    service,
		Store:      store,
		Provider:   provider,
		Collection: cfg.Qdrant.Collection,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Landing page, health, and metrics
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))
	mux.Handle("/metrics", promhttp.Handler())

	// MCP HTTP endpoint (for remote client connections)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	if cfg.Server.ServerMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + cfg.Server.Port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health, metrics at /metrics)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Server.Port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Research Assistant MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
