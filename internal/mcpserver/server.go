// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes lineage exploration tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fabriclens/fabriclens/internal/session"
)

// Server wraps the MCP server with lineage tools.
type Server struct {
	mcp *server.MCPServer
	svc *session.Session
}

// New creates a new MCP server with all lineage tools registered.
func New(svc *session.Session) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"FabricLens",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Case-insensitive substring search across all lineage node labels (workspaces, items, external sources)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, at least 2 characters")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("node_connections",
		mcp.WithDescription("List the incoming and outgoing lineage connections of a node within the currently visible graph."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.nodeConnections)

	s.mcp.AddTool(mcp.NewTool("focus_node",
		mcp.WithDescription("Select a node and center the viewport on it in every attached UI."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.focusNode)

	s.mcp.AddTool(mcp.NewTool("set_layout",
		mcp.WithDescription("Switch the graph layout mode."),
		mcp.WithString("mode", mcp.Required(), mcp.Description("One of: force, radial, tree")),
	), s.setLayout)

	s.mcp.AddTool(mcp.NewTool("graph_stats",
		mcp.WithDescription("Summary counts of the loaded lineage dataset."),
	), s.graphStats)

	s.mcp.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List all workspaces with their item counts."),
	), s.listWorkspaces)

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

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.svc.Search(query)
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) nodeConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conns, err := s.svc.Connections(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("connections for %q: %v", id, err)), nil
	}
	out, _ := json.MarshalIndent(conns, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) focusNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.FocusNode(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("focused: %s", id)), nil
}

func (s *Server) setLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.SetLayout(mode); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("layout: %s", mode)), nil
}

func (s *Server) graphStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Stats()
	if err != nil {
		return mcp.NewToolResultError("no graph loaded"), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.Workspaces()
	if err != nil {
		return mcp.NewToolResultError("no graph loaded"), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
