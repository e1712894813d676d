package storage

import "context"

// VectorStore is the persistence contract for embedded chunks.
//
// Implementations must replace a document's chunks atomically on upsert
// (a concurrent reader sees the old set or the new set, never a mix),
// treat deletes as idempotent, and order search results by ascending
// cosine distance with ties broken by insertion order.
type VectorStore interface {
	// UpsertDocument replaces every stored chunk of the document with the
	// given set. Upserting an empty set is equivalent to DeleteDocument.
	// Chunks whose embedding does not match the deployment dimension are
	// rejected with ErrDimensionMismatch before anything is written.
	UpsertDocument(ctx context.Context, documentID string, chunks []Chunk) error

	// DeleteDocument removes all chunks of the document. Deleting a
	// document that was never stored is not an error.
	DeleteDocument(ctx context.Context, documentID string) error

	// Search returns up to limit chunks nearest to the query vector,
	// ascending by cosine distance. Filters in opts apply before the
	// limit cutoff. An empty store yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, limit int, opts SearchOptions) ([]ScoredChunk, error)

	// ListDocuments reports stored documents and their chunk counts,
	// ordered by document ID.
	ListDocuments(ctx context.Context) ([]DocumentStat, error)

	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (uint64, error)

	// Health reports whether the store can serve requests.
	Health(ctx context.Context) error

	// Close releases any connections held by the store.
	Close() error
}
