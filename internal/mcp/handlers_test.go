package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/Rishabds7/ai-research-assistant/internal/chunker"
	"github.com/Rishabds7/ai-research-assistant/internal/retrieval"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

const testDimension = 8

// stubProvider returns the same unit vector for every input, which is
// enough to exercise the handlers end to end against the memory store.
type stubProvider struct{}

func (stubProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, testDimension)
	v[0] = 1
	return v, nil
}

func (stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		v := make([]float32, testDimension)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (stubProvider) Dimension() int { return testDimension }

func (stubProvider) ModelName() string { return "stub-embedding" }

func newTestService(store storage.VectorStore) *retrieval.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return retrieval.NewService(chunker.NewSplitter(), stubProvider{}, store, logger)
}

func TestSearchHandler_ReturnsChunks(t *testing.T) {
	store := storage.NewMemoryStore(testDimension)
	svc := newTestService(store)

	ctx := context.Background()
	sections := map[string]string{
		"Abstract":    "We study retrieval over research papers at scale.",
		"Methodology": "Chunks are embedded in batches and stored per section.",
	}
	if _, err := svc.IngestDocument(ctx, "paper-1", sections); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	handler := makeSearchHandler(svc)
	_, out, err := handler(ctx, nil, SearchPapersInput{Query: "how are papers indexed"})
	if err != nil {
		t.Fatalf("search handler failed: %v", err)
	}

	if len(out.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(out.Results))
	}
	if out.Message != "" {
		t.Errorf("Expected no message with results, got %q", out.Message)
	}
	for _, r := range out.Results {
		if r.PaperID != "paper-1" {
			t.Errorf("Unexpected paper id %q", r.PaperID)
		}
		if r.Distance > 1e-6 {
			t.Errorf("Expected near-zero distance for identical vectors, got %f", r.Distance)
		}
	}
}

func TestSearchHandler_SectionFilter(t *testing.T) {
	store := storage.NewMemoryStore(testDimension)
	svc := newTestService(store)

	ctx := context.Background()
	sections := map[string]string{
		"Methodology": "Chunks are embedded in batches and stored per section.",
		"Results":     "Recall improves with overlap between adjacent chunks.",
	}
	if _, err := svc.IngestDocument(ctx, "paper-1", sections); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	handler := makeSearchHandler(svc)
	_, out, err := handler(ctx, nil, SearchPapersInput{Query: "method", Section: "Methodology"})
	if err != nil {
		t.Fatalf("search handler failed: %v", err)
	}

	if len(out.Results) != 1 {
		t.Fatalf("Expected 1 filtered result, got %d", len(out.Results))
	}
	if out.Results[0].Section != "Methodology" {
		t.Errorf("Expected Methodology section, got %q", out.Results[0].Section)
	}
}

func TestSearchHandler_EmptyIndex(t *testing.T) {
	svc := newTestService(storage.NewMemoryStore(testDimension))

	handler := makeSearchHandler(svc)
	_, out, err := handler(context.Background(), nil, SearchPapersInput{Query: "anything"})
	if err != nil {
		t.Fatalf("search handler failed: %v", err)
	}

	if out.Results == nil || len(out.Results) != 0 {
		t.Errorf("Expected empty non-nil results, got %v", out.Results)
	}
	if out.Message == "" {
		t.Error("Expected a message for an empty index")
	}
}

func TestDeleteHandler_Idempotent(t *testing.T) {
	store := storage.NewMemoryStore(testDimension)
	svc := newTestService(store)

	ctx := context.Background()
	sections := map[string]string{"Abstract": "We study retrieval over research papers at scale."}
	if _, err := svc.IngestDocument(ctx, "paper-1", sections); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	handler := makeDeleteHandler(svc)
	for i := 0; i < 2; i++ {
		_, out, err := handler(ctx, nil, DeletePaperInput{PaperID: "paper-1"})
		if err != nil {
			t.Fatalf("delete handler failed on call %d: %v", i+1, err)
		}
		if !out.Deleted || out.PaperID != "paper-1" {
			t.Errorf("Unexpected delete output: %+v", out)
		}
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("Expected empty store, got %d chunks", count)
	}
}

func TestDeleteHandler_RequiresPaperID(t *testing.T) {
	handler := makeDeleteHandler(newTestService(storage.NewMemoryStore(testDimension)))

	if _, _, err := handler(context.Background(), nil, DeletePaperInput{}); err == nil {
		t.Error("Expected error for missing paper_id")
	}
}

func TestStatusHandler_ReportsCounts(t *testing.T) {
	store := storage.NewMemoryStore(testDimension)
	svc := newTestService(store)

	ctx := context.Background()
	if _, err := svc.IngestDocument(ctx, "paper-1", map[string]string{
		"Abstract":    "We study retrieval over research papers at scale.",
		"Methodology": "Chunks are embedded in batches and stored per section.",
	}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := svc.IngestDocument(ctx, "paper-2", map[string]string{
		"Abstract": "A survey of chunking strategies for dense retrieval.",
	}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	handler := makeStatusHandler(store, stubProvider{}, "papers-test")
	_, out, err := handler(ctx, nil, StatusInput{})
	if err != nil {
		t.Fatalf("status handler failed: %v", err)
	}

	if out.TotalPapers != 2 {
		t.Errorf("Expected 2 papers, got %d", out.TotalPapers)
	}
	if out.TotalChunks != 3 {
		t.Errorf("Expected 3 chunks, got %d", out.TotalChunks)
	}
	if out.Collection != "papers-test" || out.EmbeddingModel != "stub-embedding" || out.Dimension != testDimension {
		t.Errorf("Unexpected status output: %+v", out)
	}
}

type unhealthyStore struct{}

func (unhealthyStore) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(storage.NewMemoryStore(testDimension))
	rec := httptest.NewRecorder()
	healthy(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Errorf("Expected 200 for healthy store, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Qdrant != "connected" {
		t.Errorf("Unexpected health response: %+v", resp)
	}

	unhealthy := NewHealthHandler(unhealthyStore{})
	rec = httptest.NewRecorder()
	unhealthy(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Errorf("Expected 503 for unhealthy store, got %d", rec.Code)
	}
}
