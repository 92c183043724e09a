// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes textbook grounding tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/store"
)

// ContractURI is the resource URI of the grounding contract.
const ContractURI = "sgk://grounding-directive"

// Server wraps the MCP server with grounding tools.
type Server struct {
	mcp      *server.MCPServer
	store    *store.Store
	defaults grounding.Options
}

// New creates a new MCP server with all grounding tools registered.
// defaults bound build_context calls that leave topK or maxChars unset.
func New(st *store.Store, defaults grounding.Options) *Server {
	s := &Server{store: st, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"SGK Grounding",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_textbook",
		mcp.WithDescription("Ranked search over textbook sections. Returns chunks with snippets and citation tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, Vietnamese with or without diacritics")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of results (default 5)")),
	), s.searchTextbook)

	s.mcp.AddTool(mcp.NewTool("build_context",
		mcp.WithDescription("Build citation-tagged textbook context for a question. "+
			"Follow the grounding contract: on failure do not answer from general knowledge. "+
			"Read it via get_grounding_directive or the "+ContractURI+" resource."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user's question")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of sections")),
		mcp.WithNumber("max_chars", mcp.Description("Character budget for the context")),
		mcp.WithString("mode", mcp.Description(`"strict" (default) or "partial"`)),
	), s.buildContext)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List the textbooks in the corpus and the load status."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("suggest_topics",
		mcp.WithDescription("Suggest textbook topics matching a partial or misspelled topic."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Partial topic")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions (default 10)")),
	), s.suggestTopics)

	s.mcp.AddTool(mcp.NewTool("get_grounding_directive",
		mcp.WithDescription("Returns the grounding contract and the directive to prepend to every grounded instruction."),
	), s.getGroundingDirective)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Grounding Contract",
			mcp.WithResourceDescription("Rules for answering from textbook context with citations."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func failureResult(err error) *mcp.CallToolResult {
	if r, ok := grounding.ReasonOf(err); ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", r, grounding.Guidance(r)))
	}
	return mcp.NewToolResultError(err.Error())
}

type searchHit struct {
	ChunkID     string  `json:"chunkId"`
	HeadingPath string  `json:"headingPath"`
	Score       float64 `json:"score"`
	Snippet     string  `json:"snippet"`
	Citation    string  `json:"citation"`
}

func (s *Server) searchTextbook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.store.Search(query, req.GetInt("top_k", s.defaults.TopK))
	if err != nil {
		reason := grounding.ReasonNoSGK
		if errors.Is(err, apperr.ErrNotReady) {
			reason = grounding.ReasonNotReady
		}
		return failureResult(&grounding.Failure{Reason: reason}), nil
	}
	if len(results) == 0 {
		return failureResult(&grounding.Failure{Reason: grounding.ReasonNoMatch}), nil
	}
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{
			ChunkID:     r.Chunk.ChunkID,
			HeadingPath: r.Chunk.HeadingPath,
			Score:       r.Score,
			Snippet:     s.store.Snippet(r.Chunk, query),
			Citation:    grounding.Tag(r.Chunk),
		})
	}
	return jsonResult(hits), nil
}

func (s *Server) buildContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := grounding.Options{
		TopK:     req.GetInt("top_k", s.defaults.TopK),
		MaxChars: req.GetInt("max_chars", s.defaults.MaxChars),
	}
	mode := grounding.ParseMode(req.GetString("mode", string(grounding.ModeStrict)))

	gc, err := grounding.BuildContext(s.store, query, opts)
	if err != nil {
		if grounding.Gate(err, mode) == nil {
			r, _ := grounding.ReasonOf(err)
			return mcp.NewToolResultText(fmt.Sprintf("%s (partial mode): no textbook context; reply without textbook facts.\n\n%s",
				r, grounding.Directive)), nil
		}
		return failureResult(err), nil
	}
	return mcp.NewToolResultText(grounding.ComposeInstruction("", gc)), nil
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.store.State()
	return jsonResult(map[string]any{
		"status": st.Summary(),
		"books":  s.store.Books(),
	}), nil
}

func (s *Server) suggestTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sugg := s.store.SuggestTopics(query, req.GetInt("limit", store.DefaultSuggestLimit))
	if len(sugg) == 0 {
		return mcp.NewToolResultText("no matching topics"), nil
	}
	lines := make([]string, 0, len(sugg))
	for _, sg := range sugg {
		lines = append(lines, sg.Topic)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getGroundingDirective(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GroundingContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     GroundingContract,
		},
	}, nil
}
