package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Rishabds7/ai-research-assistant/internal/embedding"
	"github.com/Rishabds7/ai-research-assistant/internal/retrieval"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

// makeSearchHandler creates the search_papers tool handler. The service
// embeds the query and returns chunks ascending by cosine distance; filters
// are applied in the store before the result cutoff.
func makeSearchHandler(service *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, SearchPapersInput,
) (*mcp.CallToolResult, SearchPapersOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchPapersInput) (
		*mcp.CallToolResult, SearchPapersOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = retrieval.DefaultSearchLimit
		}

		results, err := service.Search(ctx, input.Query, maxResults, storage.SearchOptions{
			SectionLabel: input.Section,
			DocumentID:   input.PaperID,
		})
		if err != nil {
			return nil, SearchPapersOutput{}, fmt.Errorf("search failed: %w", err)
		}

		chunks := make([]PaperChunk, 0, len(results))
		for _, r := range results {
			chunks = append(chunks, PaperChunk{
				PaperID:       r.DocumentID,
				Section:       r.SectionLabel,
				Text:          r.Text,
				Distance:      r.Distance,
				SequenceIndex: r.SequenceIndex,
			})
		}

		if len(chunks) == 0 {
			return nil, SearchPapersOutput{
				Results: []PaperChunk{},
				Message: "No matching passages found. Try broader search terms.",
			}, nil
		}

		return nil, SearchPapersOutput{Results: chunks}, nil
	}
}

// makeListHandler creates the list_papers tool handler.
func makeListHandler(store storage.VectorStore) func(
	context.Context, *mcp.CallToolRequest, ListPapersInput,
) (*mcp.CallToolResult, ListPapersOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPapersInput) (
		*mcp.CallToolResult, ListPapersOutput, error,
	) {
		stats, err := store.ListDocuments(ctx)
		if err != nil {
			return nil, ListPapersOutput{}, fmt.Errorf("failed to list papers: %w", err)
		}

		papers := make([]PaperInfo, 0, len(stats))
		for _, s := range stats {
			papers = append(papers, PaperInfo{PaperID: s.DocumentID, Chunks: s.Chunks})
		}

		return nil, ListPapersOutput{
			Papers: papers,
			Count:  len(papers),
		}, nil
	}
}

// makeDeleteHandler creates the delete_paper tool handler. Deletion is
// idempotent: removing a paper that was never indexed still succeeds.
func makeDeleteHandler(service *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, DeletePaperInput,
) (*mcp.CallToolResult, DeletePaperOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeletePaperInput) (
		*mcp.CallToolResult, DeletePaperOutput, error,
	) {
		if input.PaperID == "" {
			return nil, DeletePaperOutput{}, fmt.Errorf("paper_id is required")
		}

		if err := service.DeleteDocument(ctx, input.PaperID); err != nil {
			return nil, DeletePaperOutput{}, fmt.Errorf("failed to delete paper: %w", err)
		}

		return nil, DeletePaperOutput{
			PaperID: input.PaperID,
			Deleted: true,
		}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(
	store storage.VectorStore,
	provider embedding.Provider,
	collection string,
) func(context.Context, *mcp.CallToolRequest, StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		stats, err := store.ListDocuments(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to list papers: %w", err)
		}

		count, err := store.Count(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count chunks: %w", err)
		}

		return nil, StatusOutput{
			TotalPapers:    len(stats),
			TotalChunks:    int(count),
			Collection:     collection,
			EmbeddingModel: provider.ModelName(),
			Dimension:      provider.Dimension(),
		}, nil
	}
}
