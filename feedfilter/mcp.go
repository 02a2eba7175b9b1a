package feedfilter

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
	"github.com/hazyhaar/leanbrew/kit"
)

// RegisterMCP exposes the toggle panel and the live status as MCP tools
// on srv. Serve it from the process that runs Watch.
func (f *Filter) RegisterMCP(srv *mcp.Server) {
	f.RegisterToggleMCP(srv)
	f.registerStatusTool(srv)
}

// RegisterToggleMCP exposes only the toggle tools, for processes that
// share the store but never watch a page.
func (f *Filter) RegisterToggleMCP(srv *mcp.Server) {
	f.registerListTool(srv)
	f.registerSetTool(srv)
}

func (f *Filter) tool(name string, ep kit.Endpoint) kit.Endpoint {
	return kit.Logging(f.logger, name)(ep)
}

type listReq struct{}

func (f *Filter) registerListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "leanbrew_list_toggles",
		Description: "List the five feed filter toggles and whether each is enabled.",
		InputSchema: kit.InputSchema(map[string]any{}),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		views, err := toggles.Views(ctx, f.store)
		if err != nil {
			return nil, err
		}
		return map[string]any{"toggles": views}, nil
	}
	kit.RegisterMCPTool(srv, tool, f.tool(tool.Name, endpoint), kit.DecodeJSON[listReq]())
}

type setReq struct {
	Key     string `json:"key"`
	Enabled *bool  `json:"enabled"`
}

func (f *Filter) registerSetTool(srv *mcp.Server) {
	keys := make([]string, len(verdict.ToggleSpecs))
	for i, spec := range verdict.ToggleSpecs {
		keys[i] = spec.Key
	}
	tool := &mcp.Tool{
		Name: "leanbrew_set_toggle",
		Description: "Enable or disable one feed filter toggle. " +
			"The change applies the next time the home feed is opened.",
		InputSchema: kit.InputSchema(map[string]any{
			"key":     map[string]any{"type": "string", "enum": keys, "description": "Toggle store key"},
			"enabled": map[string]any{"type": "boolean"},
		}, "key", "enabled"),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setReq)
		if r.Enabled == nil {
			return nil, errors.New("enabled is required")
		}
		if err := toggles.SetToggle(ctx, f.store, r.Key, *r.Enabled); err != nil {
			return nil, err
		}
		f.logger.Info("feedfilter: toggle set", "key", r.Key, "enabled", *r.Enabled)
		return map[string]any{"key": r.Key, "enabled": *r.Enabled}, nil
	}
	kit.RegisterMCPTool(srv, tool, f.tool(tool.Name, endpoint), kit.DecodeJSON[setReq]())
}

type statusReq struct{}

func (f *Filter) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "leanbrew_status",
		Description: "Current page location, observation session and filter counters.",
		InputSchema: kit.InputSchema(map[string]any{}),
	}
	endpoint := func(_ context.Context, _ any) (any, error) {
		return f.Status(), nil
	}
	kit.RegisterMCPTool(srv, tool, f.tool(tool.Name, endpoint), kit.DecodeJSON[statusReq]())
}
