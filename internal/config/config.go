// Package config loads the assistant configuration from an optional YAML
// file, then applies environment overrides. Environment variables win so
// deployments can keep one config file and vary per instance.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the MCP server surface.
type ServerConfig struct {
	Port       string `yaml:"port"`
	ServerMode bool   `yaml:"server_mode"`
}

// QdrantConfig contains connection details for the vector store.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig selects the embedding provider and its output shape.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// ChunkingConfig controls how section text is split.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig tunes the ingest and search pipeline.
type RetrievalConfig struct {
	BatchSize          int `yaml:"batch_size"`
	SearchLimit        int `yaml:"search_limit"`
	AttemptTimeoutSecs int `yaml:"attempt_timeout_secs"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads the config at path, fills defaults, and applies environment
// overrides. A missing file is not an error; defaults plus environment are
// used instead.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		applyDefaults(cfg)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "openai", "google":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Chunking.MaxSize <= 0 {
		return fmt.Errorf("chunk max size must be positive, got %d", c.Chunking.MaxSize)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("chunk overlap %d must be in [0, max size %d)", c.Chunking.Overlap, c.Chunking.MaxSize)
	}
	if c.Retrieval.BatchSize <= 0 {
		return fmt.Errorf("embed batch size must be positive, got %d", c.Retrieval.BatchSize)
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant host must not be empty")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection must not be empty")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "papers",
		},
		Embedding: EmbeddingConfig{
			Provider:  "google",
			Model:     "text-embedding-004",
			Dimension: 768,
		},
		Chunking: ChunkingConfig{
			MaxSize: 500,
			Overlap: 50,
		},
		Retrieval: RetrievalConfig{
			BatchSize:          50,
			SearchLimit:        5,
			AttemptTimeoutSecs: 30,
		},
	}
}

// applyDefaults backfills fields the YAML file left at their zero value.
func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = def.Qdrant.Host
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = def.Qdrant.Port
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = def.Qdrant.Collection
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = def.Embedding.Dimension
	}
	if cfg.Chunking.MaxSize == 0 {
		cfg.Chunking.MaxSize = def.Chunking.MaxSize
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Retrieval.BatchSize == 0 {
		cfg.Retrieval.BatchSize = def.Retrieval.BatchSize
	}
	if cfg.Retrieval.SearchLimit == 0 {
		cfg.Retrieval.SearchLimit = def.Retrieval.SearchLimit
	}
	if cfg.Retrieval.AttemptTimeoutSecs == 0 {
		cfg.Retrieval.AttemptTimeoutSecs = def.Retrieval.AttemptTimeoutSecs
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.ServerMode = getEnv("SERVER_MODE", boolString(cfg.Server.ServerMode)) == "true"

	cfg.Qdrant.Host = getEnv("QDRANT_HOST", cfg.Qdrant.Host)
	cfg.Qdrant.Port = getEnvInt("QDRANT_PORT", cfg.Qdrant.Port)
	cfg.Qdrant.Collection = getEnv("QDRANT_COLLECTION", cfg.Qdrant.Collection)

	cfg.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Model = getEnv("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.Dimension = getEnvInt("EMBEDDING_DIMENSION", cfg.Embedding.Dimension)

	cfg.Chunking.MaxSize = getEnvInt("CHUNK_SIZE", cfg.Chunking.MaxSize)
	cfg.Chunking.Overlap = getEnvInt("CHUNK_OVERLAP", cfg.Chunking.Overlap)

	cfg.Retrieval.BatchSize = getEnvInt("EMBED_BATCH_SIZE", cfg.Retrieval.BatchSize)
	cfg.Retrieval.SearchLimit = getEnvInt("SEARCH_LIMIT", cfg.Retrieval.SearchLimit)
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

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
