package feedfilter

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

var testMCPImpl = &mcp.Implementation{Name: "leanbrew-test", Version: "0.1.0"}

func mcpSession(t *testing.T, f *Filter) *mcp.ClientSession {
	t.Helper()
	return mcpSessionWith(t, f.RegisterMCP)
}

func mcpSessionWith(t *testing.T, register func(*mcp.Server)) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text, result.IsError
}

func TestMCP_SetThenList(t *testing.T) {
	store := NewMemoryStore(nil)
	session := mcpSession(t, New(DefaultConfig(), store, nil))

	text, isErr := callTool(t, session, "leanbrew_set_toggle", map[string]any{"key": verdict.KeyOldPost, "enabled": true})
	if isErr {
		t.Fatalf("set: %s", text)
	}

	text, isErr = callTool(t, session, "leanbrew_list_toggles", map[string]any{})
	if isErr {
		t.Fatalf("list: %s", text)
	}
	var resp struct {
		Toggles []toggles.View `json:"toggles"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Toggles) != 5 {
		t.Fatalf("toggles: got %d, want 5", len(resp.Toggles))
	}
	for _, v := range resp.Toggles {
		if want := v.Key == verdict.KeyOldPost; v.Enabled != want {
			t.Errorf("%s: got %v, want %v", v.Key, v.Enabled, want)
		}
	}
}

func TestMCP_SetUnknownKey(t *testing.T) {
	session := mcpSession(t, New(DefaultConfig(), NewMemoryStore(nil), nil))
	text, isErr := callTool(t, session, "leanbrew_set_toggle", map[string]any{"key": "darkMode", "enabled": true})
	if !isErr || !strings.Contains(text, "unknown key") {
		t.Errorf("got isErr=%v text=%q", isErr, text)
	}
}

func TestMCP_Status(t *testing.T) {
	session := mcpSession(t, New(DefaultConfig(), NewMemoryStore(nil), nil))
	text, isErr := callTool(t, session, "leanbrew_status", map[string]any{})
	if isErr || !strings.Contains(text, `"state":"off_feed"`) {
		t.Errorf("got isErr=%v text=%q", isErr, text)
	}
}

func TestMCP_ToggleOnlyServer(t *testing.T) {
	f := New(DefaultConfig(), NewMemoryStore(nil), nil)
	session := mcpSessionWith(t, f.RegisterToggleMCP)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	if got := strings.Join(names, ","); got != "leanbrew_list_toggles,leanbrew_set_toggle" {
		t.Errorf("tools: got %s", got)
	}
}
