package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/profilestore"
	"github.com/starford/ansuz/internal/registry"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) (*Server, *profilestore.Store) {
	t.Helper()
	store := testutil.TestStore(t)
	db := testutil.TestDB(t)
	reg := registry.New(registry.WithStore(store))
	return New(store, reg, db), store
}

func mcpClient(usageID string) *llm.Client {
	c := testutil.TestClient(usageID, "claude-sonnet-4")
	c.APIKey = "sk-secret"
	return c
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_profiles":
		result, err = srv.listProfiles(ctx, req)
	case "get_profile":
		result, err = srv.getProfile(ctx, req)
	case "search_profiles":
		result, err = srv.searchProfiles(ctx, req)
	case "list_usage_ids":
		result, err = srv.listUsageIDs(ctx, req)
	case "get_default_profile":
		result, err = srv.getDefaultProfile(ctx, req)
	case "set_default_profile":
		result, err = srv.setDefaultProfile(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListProfilesTool(t *testing.T) {
	srv, store := testServer(t)
	if err := store.SaveProfile("agent", "coding agent", mcpClient("agent-llm"), true); err != nil {
		t.Fatal(err)
	}

	res := callTool(t, srv, "list_profiles", nil)
	text := resultText(res)
	if !strings.Contains(text, `"agent"`) || !strings.Contains(text, "coding agent") {
		t.Errorf("list output: %q", text)
	}
}

func TestGetProfileTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.SaveProfile("agent", "", mcpClient("agent-llm"), true)

	res := callTool(t, srv, "get_profile", map[string]interface{}{"name": "agent"})
	text := resultText(res)
	if !strings.Contains(text, "claude-sonnet-4") {
		t.Errorf("get output: %q", text)
	}
	if strings.Contains(text, "sk-secret") {
		t.Error("secret leaked through MCP tool")
	}
	if !strings.Contains(text, llm.RedactedAPIKey) {
		t.Errorf("api key should be masked: %q", text)
	}
}

func TestGetProfileTool_Unknown(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "get_profile", map[string]interface{}{"name": "ghost"})
	if !res.IsError {
		t.Error("expected error result for unknown profile")
	}
}

func TestListUsageIDsTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.SaveProfile("agent", "", mcpClient("agent-llm"), true)

	res := callTool(t, srv, "list_usage_ids", nil)
	if !strings.Contains(resultText(res), "agent-llm") {
		t.Errorf("usage ids output: %q", resultText(res))
	}
}

func TestDefaultProfileTools(t *testing.T) {
	srv, store := testServer(t)
	_ = store.SaveProfile("agent", "", mcpClient("agent-llm"), true)

	res := callTool(t, srv, "get_default_profile", nil)
	if !strings.Contains(resultText(res), "no default") {
		t.Errorf("unbound default output: %q", resultText(res))
	}

	res = callTool(t, srv, "set_default_profile", map[string]interface{}{"name": "agent"})
	if res.IsError {
		t.Fatalf("set default failed: %q", resultText(res))
	}

	res = callTool(t, srv, "get_default_profile", nil)
	if !strings.Contains(resultText(res), "agent-llm") {
		t.Errorf("default output: %q", resultText(res))
	}
}

func TestSetDefaultProfileTool_Unknown(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "set_default_profile", map[string]interface{}{"name": "ghost"})
	if !res.IsError {
		t.Error("expected error result for unknown profile")
	}
}

func TestProfileFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readProfileFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "usage_id") {
		t.Error("contract should describe the document fields")
	}
}
