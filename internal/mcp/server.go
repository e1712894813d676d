package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Rishabds7/ai-research-assistant/internal/embedding"
	"github.com/Rishabds7/ai-research-assistant/internal/retrieval"
	"github.com/Rishabds7/ai-research-assistant/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server  *mcp.Server
	service *retrieval.Service
	store   storage.VectorStore
}

// Config holds server dependencies.
type Config struct {
	Service    *retrieval.Service
	Store      storage.VectorStore
	Provider   embedding.Provider
	Collection string
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "research-assistant-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_papers",
		Description: "Search indexed research papers semantically. Returns the closest passages with their paper, section, and cosine distance. Optionally filter by section label or paper.",
	}, makeSearchHandler(cfg.Service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_papers",
		Description: "List every indexed paper with its stored chunk count.",
	}, makeListHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_paper",
		Description: "Remove a paper and all of its passages from the index. Safe to call for papers that are not indexed.",
	}, makeDeleteHandler(cfg.Service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current status of the paper index: paper and chunk counts, collection name, embedding model and dimension.",
	}, makeStatusHandler(cfg.Store, cfg.Provider, cfg.Collection))

	return &Server{
		server:  server,
		service: cfg.Service,
		store:   cfg.Store,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
