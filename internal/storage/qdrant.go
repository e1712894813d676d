package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatchSize caps how many points go into a single Qdrant upsert call.
const upsertBatchSize = 100

// QdrantStore is the Qdrant-backed VectorStore. It manages one collection
// of chunk points whose payloads carry the chunk fields, with keyword
// indexes on document_id and section_label for filtered search.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrantStore connects to Qdrant, verifies it is reachable, and ensures
// the collection exists. It fails fast with ErrStoreUnavailable when the
// server cannot be reached within the retry window.
func NewQdrantStore(ctx context.Context, host string, port int, collection string, dimension int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	store := &QdrantStore{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}

	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := store.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return store, nil
}

// healthCheckWithRetry polls the server with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		return s.Health(ctx)
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStore) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ensureCollection creates the chunk collection and its payload indexes if
// they do not exist yet. Idempotent.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Without keyword indexes, filtered search falls back to full scans.
	for _, field := range []string{"document_id", "section_label"} {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}

	return nil
}

// UpsertDocument replaces the document's chunks: the old points are deleted
// synchronously before any new point is written, so a reader never mixes
// stale and fresh chunks of the same paper.
func (s *QdrantStore) UpsertDocument(ctx context.Context, documentID string, chunks []Chunk) error {
	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), s.dimension)
		}
	}

	if err := s.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	indexedAt := time.Now().UTC().Format(time.RFC3339)
	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(chunks))
		batch := chunks[start:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for i, chunk := range batch {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(uuid.NewString()),
				Vectors: qdrant.NewVectors(chunk.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"document_id":    documentID,
					"section_label":  chunk.SectionLabel,
					"text":           chunk.Text,
					"sequence_index": chunk.SequenceIndex,
					"indexed_at":     indexedAt,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d for %s: %w", start, end, documentID, err)
		}
	}

	return nil
}

// upsertWithRetry writes points with exponential backoff. Wait is set so
// the points are visible once the call returns.
func (s *QdrantStore) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// DeleteDocument removes every point of the document. Deleting an unknown
// document succeeds without effect.
func (s *QdrantStore) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// Search performs filtered k-NN over the chunk points. Qdrant scores
// cosine as similarity (higher is closer); results are converted to the
// cosine distance the rest of the system ranks by.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int, opts SearchOptions) ([]ScoredChunk, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}
	if limit <= 0 {
		return []ScoredChunk{}, nil
	}

	var must []*qdrant.Condition
	if opts.DocumentID != "" {
		must = append(must, qdrant.NewMatch("document_id", opts.DocumentID))
	}
	if opts.SectionLabel != "" {
		must = append(must, qdrant.NewMatch("section_label", opts.SectionLabel))
	}
	var filter *qdrant.Filter
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		hits = append(hits, ScoredChunk{
			Chunk: Chunk{
				DocumentID:    payload["document_id"].GetStringValue(),
				SectionLabel:  payload["section_label"].GetStringValue(),
				Text:          payload["text"].GetStringValue(),
				SequenceIndex: int(payload["sequence_index"].GetIntegerValue()),
			},
			Distance: 1 - float64(result.Score),
		})
	}

	return hits, nil
}

// ListDocuments scrolls the collection and aggregates chunk counts per
// document ID.
func (s *QdrantStore) ListDocuments(ctx context.Context) ([]DocumentStat, error) {
	counts := make(map[string]int)
	var offset *qdrant.PointId
	pageSize := uint32(256)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(pageSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("document_id"),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll documents: %w", err)
		}

		for _, result := range results {
			if id := result.Payload["document_id"].GetStringValue(); id != "" {
				counts[id]++
			}
		}

		if uint32(len(results)) < pageSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	stats := make([]DocumentStat, 0, len(counts))
	for id, n := range counts {
		stats = append(stats, DocumentStat{DocumentID: id, Chunks: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].DocumentID < stats[j].DocumentID
	})
	return stats, nil
}

// Count returns the number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	collection, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	return collection.GetPointsCount(), nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
