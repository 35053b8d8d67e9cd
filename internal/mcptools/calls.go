package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/labos/internal/tools"
)

// ToolCaller runs tool calls. *tools.Dispatcher implements it.
type ToolCaller interface {
	Call(ctx context.Context, call tools.Call) tools.Envelope
}

// CallTool exposes one tool of the dispatcher as an MCP tool of the same
// name. The result is the JSON envelope. Calls are sessionless: terminal
// quotas such as the verify cap do not apply here.
type CallTool struct {
	caller ToolCaller
	name   tools.Name
}

// NewCallTool creates a CallTool for name.
func NewCallTool(caller ToolCaller, name tools.Name) *CallTool {
	return &CallTool{caller: caller, name: name}
}

// NewCallTools creates a CallTool for every dispatcher tool.
func NewCallTools(caller ToolCaller) []*CallTool {
	out := make([]*CallTool, len(tools.Names))
	for i, name := range tools.Names {
		out[i] = NewCallTool(caller, name)
	}
	return out
}

// Definition returns the MCP tool definition.
func (t *CallTool) Definition() mcp.Tool {
	switch t.name {
	case tools.LocalContext:
		return mcp.NewTool(string(t.name),
			mcp.WithDescription(
				"Search the local knowledge index (profile, projects, notes, network) "+
					"and expand the hits through their relations.",
			),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query, at least 2 characters"),
			),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Max hits (default: %d, max: %d)", tools.DefaultContextLimit, tools.MaxContextLimit)),
			),
		)
	case tools.WebVerify:
		return mcp.NewTool(string(t.name),
			mcp.WithDescription("Verify a claim against a web search provider and return up to five cited sources."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Claim or question to verify, at least 2 characters"),
			),
		)
	case tools.OpenApp:
		return mcp.NewTool(string(t.name),
			mcp.WithDescription("Resolve a shell app name (projects, notes, resume, news, network, desktop) to its path."),
			mcp.WithString("target",
				mcp.Required(),
				mcp.Description("App name"),
			),
		)
	default:
		return mcp.NewTool(string(t.name),
			mcp.WithDescription("List every workbench project with its summary and primary link."),
		)
	}
}

// Handle processes the tool call.
func (t *CallTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := map[string]any{}
	switch t.name {
	case tools.LocalContext:
		input["query"] = req.GetString("query", "")
		input["limit"] = intArg(req, "limit", tools.DefaultContextLimit)
	case tools.WebVerify:
		input["query"] = req.GetString("query", "")
	case tools.OpenApp:
		input["target"] = req.GetString("target", "")
	}

	env := t.caller.Call(ctx, tools.Call{Tool: t.name, Input: input})
	if !env.OK {
		data, _ := json.Marshal(env)
		return mcp.NewToolResultError(string(data)), nil
	}
	return jsonText(env)
}
