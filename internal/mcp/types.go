// Package mcp exposes the research paper index over the Model Context
// Protocol.
package mcp

// SearchPapersInput defines the input parameters for the search_papers tool.
type SearchPapersInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant paper passages"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
	// Section restricts results to one section label (e.g. "Methodology").
	Section string `json:"section,omitempty" jsonschema:"description=Only return chunks from this section (e.g. Abstract or Methodology)"`
	// PaperID restricts results to a single paper.
	PaperID string `json:"paper_id,omitempty" jsonschema:"description=Only return chunks from this paper"`
}

// SearchPapersOutput contains the search results.
type SearchPapersOutput struct {
	// Results is the list of matching chunks, closest first.
	Results []PaperChunk `json:"results"`
	// Message provides informational context (e.g. "No matching chunks found").
	Message string `json:"message,omitempty"`
}

// PaperChunk is a single passage returned from semantic search.
type PaperChunk struct {
	// PaperID identifies the paper the passage belongs to.
	PaperID string `json:"paper_id"`
	// Section is the detected section label the passage came from.
	Section string `json:"section"`
	// Text is the passage itself.
	Text string `json:"text"`
	// Distance is the cosine distance to the query: 0 identical, 2 opposite.
	Distance float64 `json:"distance"`
	// SequenceIndex is the passage's position within its section.
	SequenceIndex int `json:"sequence_index"`
}

// ListPapersInput defines the input parameters for the list_papers tool.
// This tool takes no parameters.
type ListPapersInput struct{}

// ListPapersOutput contains every indexed paper.
type ListPapersOutput struct {
	// Papers lists indexed papers with their chunk counts.
	Papers []PaperInfo `json:"papers"`
	// Count is the total number of papers.
	Count int `json:"count"`
}

// PaperInfo summarizes one indexed paper.
type PaperInfo struct {
	// PaperID identifies the paper.
	PaperID string `json:"paper_id"`
	// Chunks is the number of stored passages for the paper.
	Chunks int `json:"chunks"`
}

// DeletePaperInput defines the input parameters for the delete_paper tool.
type DeletePaperInput struct {
	// PaperID identifies the paper to remove from the index.
	PaperID string `json:"paper_id" jsonschema:"required,description=The paper to remove from the index"`
}

// DeletePaperOutput confirms the removal.
type DeletePaperOutput struct {
	// PaperID identifies the removed paper.
	PaperID string `json:"paper_id"`
	// Deleted is true once the paper is no longer indexed, whether or not
	// it existed before.
	Deleted bool `json:"deleted"`
}

// StatusInput defines the input parameters for the get_index_status tool.
// This tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the index.
type StatusOutput struct {
	// TotalPapers is the number of indexed papers.
	TotalPapers int `json:"total_papers"`
	// TotalChunks is the number of stored passages across all papers.
	TotalChunks int `json:"total_chunks"`
	// Collection is the vector store collection backing the index.
	Collection string `json:"collection"`
	// EmbeddingModel is the model used to embed passages and queries.
	EmbeddingModel string `json:"embedding_model"`
	// Dimension is the embedding dimension the index was created with.
	Dimension int `json:"dimension"`
}
