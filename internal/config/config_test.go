package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Qdrant.Host != "localhost" || cfg.Qdrant.Port != 6334 {
		t.Errorf("Unexpected qdrant defaults: %+v", cfg.Qdrant)
	}
	if cfg.Qdrant.Collection != "papers" {
		t.Errorf("Expected default collection papers, got %q", cfg.Qdrant.Collection)
	}
	if cfg.Embedding.Provider != "google" || cfg.Embedding.Dimension != 768 {
		t.Errorf("Unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Chunking.MaxSize != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("Unexpected chunking defaults: %+v", cfg.Chunking)
	}
	if cfg.Retrieval.BatchSize != 50 || cfg.Retrieval.SearchLimit != 5 {
		t.Errorf("Unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
qdrant:
  host: qdrant.internal
  collection: papers-prod
embedding:
  provider: openai
  model: text-embedding-3-small
  dimension: 1536
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Qdrant.Host != "qdrant.internal" || cfg.Qdrant.Collection != "papers-prod" {
		t.Errorf("Unexpected qdrant config: %+v", cfg.Qdrant)
	}
	if cfg.Qdrant.Port != 6334 {
		t.Errorf("Expected default port to backfill, got %d", cfg.Qdrant.Port)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimension != 1536 {
		t.Errorf("Unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Chunking.MaxSize != 500 {
		t.Errorf("Expected default chunking to backfill, got %+v", cfg.Chunking)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("qdrant:\n  host: from-file\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("QDRANT_HOST", "from-env")
	t.Setenv("EMBEDDING_DIMENSION", "1536")
	t.Setenv("SERVER_MODE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Qdrant.Host != "from-env" {
		t.Errorf("Expected env to win over file, got %q", cfg.Qdrant.Host)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("Expected env dimension 1536, got %d", cfg.Embedding.Dimension)
	}
	if !cfg.Server.ServerMode {
		t.Error("Expected server mode from env")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("qdrant: [unclosed"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }},
		{"zero dimension", func(c *Config) { c.Embedding.Dimension = 0 }},
		{"zero chunk size", func(c *Config) { c.Chunking.MaxSize = 0 }},
		{"overlap at max size", func(c *Config) { c.Chunking.Overlap = c.Chunking.MaxSize }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"zero batch size", func(c *Config) { c.Retrieval.BatchSize = 0 }},
		{"empty host", func(c *Config) { c.Qdrant.Host = "" }},
		{"empty collection", func(c *Config) { c.Qdrant.Collection = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tc.name)
			}
		})
	}
}
