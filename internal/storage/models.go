package storage

// Chunk is one embedded span of a paper section. Chunks are the unit of
// storage and search; the paper itself is only ever addressed through its
// document ID.
type Chunk struct {
	DocumentID    string    // Paper identifier chosen by the caller
	SectionLabel  string    // Logical section: "Abstract", "Methodology", ...
	Text          string    // Chunk text content
	SequenceIndex int       // Position within the section (0, 1, 2...)
	Embedding     []float32 // Vector sized to the deployment dimension
}

// ScoredChunk pairs a search hit with its distance from the query vector.
// Distance is cosine distance: 0 means identical direction, 2 opposite.
type ScoredChunk struct {
	Chunk
	Distance float64
}

// SearchOptions narrows a search before the result limit is applied.
// Zero values mean no filtering.
type SearchOptions struct {
	SectionLabel string // Only chunks from this section
	DocumentID   string // Only chunks from this paper
}

// DocumentStat summarizes one stored document.
type DocumentStat struct {
	DocumentID string
	Chunks     int
}
