// Package retrieval orchestrates the ingestion and search pipeline:
// chunking section text, embedding it in batches, and reading and writing
// the vector store. The service owns the retry policy for provider calls;
// providers themselves return errors unretried.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Rishabds7/ai-research-assistant/internal/chunker"
	"github.com/Rishabds7/ai-research-assistant/internal/embedding"
	"github.com/Rishabds7/ai-research-assistant/internal/metrics"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

const (
	// DefaultSearchLimit is the number of chunks returned when the caller
	// does not ask for a specific k.
	DefaultSearchLimit = 5

	// DefaultBatchSize caps how many chunks are sent to the embedding
	// provider in one call.
	DefaultBatchSize = 50

	// MinChunkChars is the minimum trimmed length for a chunk to be worth
	// indexing. Shorter fragments are stray headers or page furniture.
	MinChunkChars = 20

	// embedAttempts is the total number of tries per embedding call,
	// the first attempt included.
	embedAttempts = 3

	defaultAttemptTimeout = 30 * time.Second
	defaultRetryInterval  = 500 * time.Millisecond
)

// Service wires the splitter, the embedding provider, and the vector store
// into the ingest and search operations.
type Service struct {
	splitter *chunker.Splitter
	provider embedding.Provider
	store    storage.VectorStore
	logger   *slog.Logger

	batchSize      int
	attemptTimeout time.Duration
	retryInterval  time.Duration

	mu       sync.Mutex
	docLocks map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithBatchSize overrides how many chunks are embedded per provider call.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithAttemptTimeout bounds a single embedding attempt so one stuck call
// cannot hang ingestion.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.attemptTimeout = d
		}
	}
}

// WithRetryInterval sets the initial wait between embedding retries.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// NewService creates a retrieval service. If logger is nil, slog.Default()
// is used.
func NewService(splitter *chunker.Splitter, provider embedding.Provider, store storage.VectorStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		splitter:       splitter,
		provider:       provider,
		store:          store,
		logger:         logger,
		batchSize:      DefaultBatchSize,
		attemptTimeout: defaultAttemptTimeout,
		retryInterval:  defaultRetryInterval,
		docLocks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestResult reports what happened to a single document.
type IngestResult struct {
	DocumentID    string
	Sections      int
	Chunks        int
	SkippedChunks int
	Duration      time.Duration
}

// IngestDocument chunks the given sections, embeds them, and atomically
// replaces the stored representation of the document. Ingesting the same
// document twice leaves only the second version. Batches that fail to embed
// after retries are skipped and counted in SkippedChunks; the rest of the
// document is still indexed. Sections with no usable text produce no chunks,
// and ingesting a document with no usable text at all removes any previous
// version.
func (s *Service) IngestDocument(ctx context.Context, documentID string, sections map[string]string) (*IngestResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("document id must not be empty")
	}

	unlock := s.lockDocument(documentID)
	defer unlock()

	start := time.Now()
	result := &IngestResult{DocumentID: documentID}

	pending := s.chunkSections(documentID, sections, result)
	s.logger.Info("Chunked document",
		"document", documentID,
		"sections", result.Sections,
		"chunks", len(pending))

	records := make([]storage.Chunk, 0, len(pending))
	for lo := 0; lo < len(pending); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(pending))
		batch := pending[lo:hi]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedBatchWithRetry(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("Embedding batch failed, skipping its chunks",
				"document", documentID,
				"chunks", len(batch),
				"error", err)
			metrics.IncEmbedFailures()
			metrics.AddChunksSkipped(len(batch))
			result.SkippedChunks += len(batch)
			continue
		}

		for i, vec := range vectors {
			conformed, adjusted := embedding.Conform(vec, s.provider.Dimension())
			if adjusted {
				s.logger.Warn("Embedding dimension adjusted",
					"document", documentID,
					"section", batch[i].SectionLabel,
					"got", len(vec),
					"want", s.provider.Dimension())
			}
			rec := batch[i]
			rec.Embedding = conformed
			records = append(records, rec)
		}
		s.logger.Debug("Embedded batch",
			"document", documentID,
			"chunks", len(batch),
			"total", len(records))
	}

	// If the provider was down for the whole document, keep the previous
	// version instead of replacing it with nothing.
	if len(pending) > 0 && len(records) == 0 {
		return nil, fmt.Errorf("embed document %s: all %d chunks failed", documentID, len(pending))
	}

	if err := s.store.UpsertDocument(ctx, documentID, records); err != nil {
		return nil, fmt.Errorf("store document %s: %w", documentID, err)
	}

	result.Chunks = len(records)
	result.Duration = time.Since(start)
	metrics.IncDocumentsIngested()
	metrics.AddChunksIndexed(result.Chunks)

	s.logger.Info("Ingested document",
		"document", documentID,
		"sections", result.Sections,
		"chunks", result.Chunks,
		"skipped", result.SkippedChunks,
		"duration", result.Duration)
	return result, nil
}

// chunkSections splits every section and keeps the chunks long enough to
// index. Sections are walked in sorted label order so sequence numbers are
// deterministic.
func (s *Service) chunkSections(documentID string, sections map[string]string, result *IngestResult) []storage.Chunk {
	labels := make([]string, 0, len(sections))
	for label := range sections {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var pending []storage.Chunk
	for _, label := range labels {
		seq := 0
		for _, span := range s.splitter.Split(sections[label]) {
			text := strings.TrimSpace(span.Text)
			if len(text) < MinChunkChars {
				s.logger.Debug("Skipping short chunk",
					"document", documentID,
					"section", label,
					"chars", len(text))
				continue
			}
			pending = append(pending, storage.Chunk{
				DocumentID:    documentID,
				SectionLabel:  label,
				Text:          text,
				SequenceIndex: seq,
			})
			seq++
		}
		if seq > 0 {
			result.Sections++
		}
	}
	return pending
}

// Search embeds the query and returns the closest chunks in ascending
// cosine distance. A failed or empty query embedding yields empty results
// rather than an error; only a store failure is returned to the caller.
func (s *Service) Search(ctx context.Context, query string, limit int, opts storage.SearchOptions) ([]storage.ScoredChunk, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if strings.TrimSpace(query) == "" {
		return []storage.ScoredChunk{}, nil
	}

	start := time.Now()
	vector, err := s.embedQueryWithRetry(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Query embedding failed, returning no results", "error", err)
		metrics.IncEmbedFailures()
		return []storage.ScoredChunk{}, nil
	}
	if len(vector) == 0 {
		return []storage.ScoredChunk{}, nil
	}

	vector, adjusted := embedding.Conform(vector, s.provider.Dimension())
	if adjusted {
		s.logger.Warn("Query embedding dimension adjusted", "want", s.provider.Dimension())
	}

	results, err := s.store.Search(ctx, vector, limit, opts)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}

	metrics.IncSearches()
	metrics.ObserveSearchDuration(time.Since(start))
	s.logger.Debug("Search served",
		"results", len(results),
		"limit", limit,
		"duration", time.Since(start))
	return results, nil
}

// DeleteDocument removes every chunk of the document from the store.
// Deleting a document that was never ingested is not an error.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	unlock := s.lockDocument(documentID)
	defer unlock()

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	s.logger.Info("Deleted document", "document", documentID)
	return nil
}

// lockDocument serializes writers for one document ID. Writers for
// different documents proceed in parallel.
func (s *Service) lockDocument(documentID string) func() {
	s.mu.Lock()
	l, ok := s.docLocks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.docLocks[documentID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()

		start := time.Now()
		result, err := s.provider.EmbedBatch(attemptCtx, texts)
		metrics.ObserveEmbedDuration(time.Since(start))
		if err != nil {
			if embedding.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(result) != len(texts) {
			return backoff.Permanent(fmt.Errorf("provider returned %d vectors for %d texts", len(result), len(texts)))
		}
		vectors = result
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *Service) embedQueryWithRetry(ctx context.Context, query string) ([]float32, error) {
	var vector []float32

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()

		start := time.Now()
		result, err := s.provider.EmbedOne(attemptCtx, query)
		metrics.ObserveEmbedDuration(time.Since(start))
		if err != nil {
			if embedding.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		vector = result
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return vector, nil
}

// newBackOff builds the shared retry schedule: exponential waits between a
// fixed number of attempts, cut short when the context is done.
func (s *Service) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, embedAttempts-1), ctx)
}
