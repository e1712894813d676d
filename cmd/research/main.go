// Package main provides the research CLI for managing the paper index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rishabds7/ai-research-assistant/internal/analysis"
	"github.com/Rishabds7/ai-research-assistant/internal/chunker"
	"github.com/Rishabds7/ai-research-assistant/internal/config"
	"github.com/Rishabds7/ai-research-assistant/internal/embedding"
	"github.com/Rishabds7/ai-research-assistant/internal/papers"
	"github.com/Rishabds7/ai-research-assistant/internal/retrieval"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Research paper index management tool",
	Long:  "CLI tool for ingesting, searching, and analyzing research papers in Qdrant",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <paper.pdf>",
	Short: "Extract, chunk, embed, and index a paper",
	Long: `Extracts text from a PDF, detects its sections, and indexes it.

This command:
1. Connects to Qdrant and verifies health
2. Extracts per-page text from the PDF
3. Detects logical sections (Abstract, Methodology, ...)
4. Chunks each section and embeds the chunks in batches
5. Atomically replaces any previous version of the paper

Environment variables:
  QDRANT_HOST     Qdrant hostname (default: localhost)
  QDRANT_PORT     Qdrant gRPC port (default: 6334)
  GOOGLE_API_KEY  Google API key (google provider)
  OPENAI_API_KEY  OpenAI API key (openai provider)`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed papers semantically",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <paper-id>",
	Short: "Remove a paper from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index size and per-paper chunk counts",
	RunE:  runStatus,
}

var gapCmd = &cobra.Command{
	Use:   "gap <methodologies.json>",
	Short: "Report untried dataset/model combinations and common limitations",
	Args:  cobra.ExactArgs(1),
	RunE:  runGap,
}

var (
	ingestPaperID string
	searchLimit   int
	searchSection string
	searchPaper   string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestPaperID, "id", "", "paper id (defaults to the file name)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default 5)")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "only search this section label")
	searchCmd.Flags().StringVar(&searchPaper, "paper", "", "only search this paper")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(gapCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()
	path := args[0]

	paperID := ingestPaperID
	if paperID == "" {
		paperID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 1. Connect to Qdrant
	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.Qdrant.Host, cfg.Qdrant.Port)
	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 2. Build the ingestion pipeline
	service, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}

	// 3. Extract text and sections from the PDF
	fmt.Printf("Extracting %s...\n", path)
	processor := papers.NewProcessor(slog.Default())
	paper, err := processor.Process(path, paperID)
	if err != nil {
		return fmt.Errorf("failed to process pdf: %w", err)
	}
	fmt.Printf("Detected %d sections\n", len(paper.Sections))

	// 4. Chunk, embed, and store
	fmt.Println("Indexing...")
	result, err := service.IngestDocument(ctx, paperID, paper.Sections)
	if err != nil {
		return fmt.Errorf("failed to ingest paper: %w", err)
	}

	fmt.Println()
	fmt.Println("Ingest complete!")
	fmt.Printf("  Paper: %s\n", result.DocumentID)
	fmt.Printf("  Sections: %d\n", result.Sections)
	fmt.Printf("  Chunks: %d\n", result.Chunks)
	if result.SkippedChunks > 0 {
		fmt.Printf("  Skipped chunks: %d\n", result.SkippedChunks)
	}
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Retrieval.SearchLimit
	}

	results, err := service.Search(ctx, query, limit, storage.SearchOptions{
		SectionLabel: searchSection,
		DocumentID:   searchPaper,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching passages found.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s / %s (distance %.4f)\n", i+1, r.DocumentID, r.SectionLabel, r.Distance)
		fmt.Printf("   %s\n", truncate(r.Text, 200))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	paperID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteDocument(ctx, paperID); err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}

	fmt.Printf("Deleted %s\n", paperID)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list papers: %w", err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	fmt.Printf("Collection: %s (%s:%d)\n", cfg.Qdrant.Collection, cfg.Qdrant.Host, cfg.Qdrant.Port)
	fmt.Printf("Embedding: %s/%s at %d dimensions\n", cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimension)
	fmt.Printf("Papers: %d\n", len(stats))
	fmt.Printf("Chunks: %d\n", count)

	if len(stats) > 0 {
		fmt.Println()
		for _, s := range stats {
			fmt.Printf("  %-40s %d chunks\n", s.DocumentID, s.Chunks)
		}
	}
	return nil
}

func runGap(cmd *cobra.Command, args []string) error {
	methodologies, err := analysis.LoadMethodologies(args[0])
	if err != nil {
		return err
	}

	report := analysis.AnalyzeCombinations(methodologies)

	fmt.Printf("Papers analyzed: %d\n", len(methodologies))
	fmt.Printf("Datasets: %d  Models: %d\n", len(report.Datasets), len(report.Models))
	fmt.Printf("Existing combinations: %d\n", len(report.Existing))

	if len(report.Missing) > 0 {
		fmt.Println()
		fmt.Println("Missing combinations:")
		for _, combo := range report.Missing {
			fmt.Printf("  - %s x %s\n", combo.Dataset, combo.Model)
		}
	}

	limitations := analysis.ExtractCommonLimitations(methodologies)
	if len(limitations) > 0 {
		fmt.Println()
		fmt.Println("Common limitations:")
		for _, phrase := range limitations {
			fmt.Printf("  - %s\n", phrase)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func connectStore(ctx context.Context, cfg *config.Config) (*storage.QdrantStore, error) {
	store, err := storage.NewQdrantStore(ctx, cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection, cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	return store, nil
}

func buildService(ctx context.Context, cfg *config.Config, store storage.VectorStore) (*retrieval.Service, error) {
	provider, err := embedding.NewProvider(ctx, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	splitter := chunker.NewSplitter(
		chunker.WithMaxSize(cfg.Chunking.MaxSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	return retrieval.NewService(splitter, provider, store, slog.Default(),
		retrieval.WithBatchSize(cfg.Retrieval.BatchSize),
		retrieval.WithAttemptTimeout(time.Duration(cfg.Retrieval.AttemptTimeoutSecs)*time.Second),
	), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
