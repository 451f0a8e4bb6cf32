package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/radutopala/meilidocs/internal/config"
	"github.com/radutopala/meilidocs/internal/docsearch"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchDocsToolName is the tool name advertised to MCP clients.
const SearchDocsToolName = "search_docs"

const searchDocsDescription = "Search indexed documentation using Meilisearch. " +
	"Use this tool when users ask questions about any indexed documentation " +
	"(e.g. Open WebUI, Anthropic/Claude, OpenAI or Meilisearch docs). " +
	"Returns formatted search results with titles, URLs, and content snippets."

// Server exposes the documentation search tool over MCP
type Server struct {
	server *mcp.Server
	logger *slog.Logger
	tool   *docsearch.Tool
}

// NewServer creates a new MCP server backed by a search tool for cfg
func NewServer(name, version string, cfg config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		logger: logger,
		tool:   docsearch.New(cfg, logger),
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    name,
			Version: version,
		},
		nil,
	)

	if err := s.registerTools(server); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	s.server = server

	logger.Info("Documentation search server ready",
		"meilisearch_url", cfg.MeilisearchURL,
		"index", cfg.MeilisearchIndex,
		"results_limit", cfg.ResultsLimit,
		"api_key_set", cfg.MeilisearchAPIKey != "")

	return s, nil
}

// Run starts the MCP server with the given transport
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// HTTPHandler serves the MCP server over Streamable HTTP
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools(server *mcp.Server) error {
	mcp.AddTool(server, &mcp.Tool{
		Name:        SearchDocsToolName,
		Description: searchDocsDescription,
	}, s.handleSearchDocs)

	return nil
}

// SearchDocsInput defines the input for search_docs
type SearchDocsInput struct {
	Query string `json:"query" jsonschema:"The search query string"`
}

func (s *Server) handleSearchDocs(ctx context.Context, req *mcp.CallToolRequest, input SearchDocsInput) (*mcp.CallToolResult, any, error) {
	result := s.tool.SearchDocs(ctx, input.Query, s.progressEmitter(req))

	// Failures stay readable text for the model; IsError lets clients tell them apart
	return &mcp.CallToolResult{
		IsError: docsearch.IsFailure(result),
		Content: []mcp.Content{
			&mcp.TextContent{Text: result},
		},
	}, nil, nil
}

// progressEmitter logs status events and forwards them as progress
// notifications when the caller asked for progress.
func (s *Server) progressEmitter(req *mcp.CallToolRequest) docsearch.Emitter {
	var token any
	var session *mcp.ServerSession
	if req != nil && req.Params != nil {
		token = req.Params.GetProgressToken()
		session = req.Session
	}

	return func(ctx context.Context, event docsearch.Event) error {
		s.logger.InfoContext(ctx, "Search status", "description", event.Data.Description, "done", event.Data.Done)

		if token == nil || session == nil {
			return nil
		}

		progress := 0.0
		if event.Data.Done {
			progress = 1
		}
		return session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
			ProgressToken: token,
			Message:       event.Data.Description,
			Progress:      progress,
			Total:         1,
		})
	}
}
