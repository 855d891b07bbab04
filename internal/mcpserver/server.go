// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Ansuz profile tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/catalog"
	"github.com/starford/ansuz/internal/profilestore"
	"github.com/starford/ansuz/internal/registry"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	store *profilestore.Store
	reg   *registry.Registry
	db    *catalog.DB
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store *profilestore.Store, reg *registry.Registry, db *catalog.DB) *Server {
	s := &Server{store: store, reg: reg, db: db}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("List all stored LLM profiles with their metadata and the current default."),
	), s.listProfiles)

	s.mcp.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Read one profile's document. The api_key field is always masked."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Profile name")),
	), s.getProfile)

	s.mcp.AddTool(mcp.NewTool("search_profiles",
		mcp.WithDescription("Search profiles by name, description or model identifier."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProfiles)

	s.mcp.AddTool(mcp.NewTool("list_usage_ids",
		mcp.WithDescription("List every resolvable usage id: in-memory registry entries "+
			"plus profiles on disk that were never materialized."),
	), s.listUsageIDs)

	s.mcp.AddTool(mcp.NewTool("get_default_profile",
		mcp.WithDescription("Return the default profile's document, or a note that none is bound."),
	), s.getDefaultProfile)

	s.mcp.AddTool(mcp.NewTool("set_default_profile",
		mcp.WithDescription("Bind an existing profile as the directory default."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Profile name to set as default")),
	), s.setDefaultProfile)

	// Resource: profile format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://profile-format", "Profile Format Contract",
			mcp.WithResourceDescription("Canonical JSON profile document format and directory rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProfileFormatResource,
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

func (s *Server) listProfiles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.store.Config()
	out, _ := json.MarshalIndent(cfg, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProfile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := s.store.LoadProfile(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown profile: %s", name)), nil
	}
	out, _ := json.MarshalIndent(client.Redacted(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchProfiles(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listUsageIDs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := s.reg.UsageIDs()
	if len(ids) == 0 {
		return mcp.NewToolResultText("no usage ids registered"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) getDefaultProfile(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.store.DefaultProfile()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if client == nil {
		return mcp.NewToolResultText("no default profile is bound"), nil
	}
	out, _ := json.MarshalIndent(client.Redacted(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setDefaultProfile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.SetDefaultProfile(name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("default profile set: %s", name)), nil
}

func (s *Server) readProfileFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://profile-format",
			MIMEType: "text/markdown",
			Text:     ProfileFormatContract,
		},
	}, nil
}
