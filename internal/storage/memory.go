package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore holding chunks in insertion
// order. It backs tests and single-node deployments where running a vector
// database is not worth the setup; search is a brute-force scan, which is
// fine for the corpus sizes a local assistant handles.
type MemoryStore struct {
	dimension int

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	chunk Chunk
	norm  float64
}

// NewMemoryStore creates an empty store accepting vectors of the given
// dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{dimension: dimension}
}

// UpsertDocument replaces the document's chunks in one critical section,
// so readers never observe a half-replaced document.
func (s *MemoryStore) UpsertDocument(ctx context.Context, documentID string, chunks []Chunk) error {
	incoming := make([]memoryEntry, 0, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), s.dimension)
		}
		chunk.DocumentID = documentID
		incoming = append(incoming, memoryEntry{chunk: chunk, norm: vectorNorm(chunk.Embedding)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]memoryEntry, 0, len(s.entries)+len(incoming))
	for _, e := range s.entries {
		if e.chunk.DocumentID != documentID {
			next = append(next, e)
		}
	}
	s.entries = append(next, incoming...)
	return nil
}

// DeleteDocument removes the document's chunks. Unknown documents are a no-op.
func (s *MemoryStore) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.entries[:0]
	for _, e := range s.entries {
		if e.chunk.DocumentID != documentID {
			next = append(next, e)
		}
	}
	s.entries = next
	return nil
}

// Search scans all stored chunks and returns the limit nearest ones by
// cosine distance. The stable sort keeps equally distant chunks in
// insertion order, so repeated searches rank ties identically.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, limit int, opts SearchOptions) ([]ScoredChunk, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}
	if limit <= 0 {
		return []ScoredChunk{}, nil
	}
	queryNorm := vectorNorm(vector)

	s.mu.RLock()
	matches := make([]ScoredChunk, 0, len(s.entries))
	for _, e := range s.entries {
		if opts.DocumentID != "" && e.chunk.DocumentID != opts.DocumentID {
			continue
		}
		if opts.SectionLabel != "" && e.chunk.SectionLabel != opts.SectionLabel {
			continue
		}
		hit := e.chunk
		hit.Embedding = nil // vectors stay inside the store
		matches = append(matches, ScoredChunk{
			Chunk:    hit,
			Distance: cosineDistance(vector, queryNorm, e.chunk.Embedding, e.norm),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ListDocuments reports stored documents and their chunk counts.
func (s *MemoryStore) ListDocuments(ctx context.Context) ([]DocumentStat, error) {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, e := range s.entries {
		counts[e.chunk.DocumentID]++
	}
	s.mu.RUnlock()

	stats := make([]DocumentStat, 0, len(counts))
	for id, n := range counts {
		stats = append(stats, DocumentStat{DocumentID: id, Chunks: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].DocumentID < stats[j].DocumentID
	})
	return stats, nil
}

// Count returns the total number of stored chunks.
func (s *MemoryStore) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries)), nil
}

// Health always succeeds; the store lives in this process.
func (s *MemoryStore) Health(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// cosineDistance computes 1 minus the cosine similarity of a and b using
// their precomputed norms. Zero vectors carry no direction and score as
// orthogonal.
func cosineDistance(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot/(normA*normB)
}

// vectorNorm returns the Euclidean norm of v.
func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
