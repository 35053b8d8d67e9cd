package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/labos/internal/terminal"
)

// Submitter processes terminal lines. *terminal.Terminal implements it.
type Submitter interface {
	Submit(ctx context.Context, line string) terminal.Output
}

// TerminalExecTool handles the terminal_exec MCP tool.
type TerminalExecTool struct {
	term Submitter
}

// NewTerminalExecTool creates a TerminalExecTool backed by a server-side
// terminal session.
func NewTerminalExecTool(term Submitter) *TerminalExecTool {
	return &TerminalExecTool{term: term}
}

// Definition returns the MCP tool definition for terminal_exec.
func (t *TerminalExecTool) Definition() mcp.Tool {
	return mcp.NewTool("terminal_exec",
		mcp.WithDescription(
			"Run one line through the portfolio terminal exactly as a visitor would type it: "+
				"commands (help, projects, search ...), natural language that is routed to a command, "+
				"or \"ask <question>\" for a grounded LLM answer. Quotas of the server session apply.",
		),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("Terminal input line"),
		),
	)
}

// Handle processes the terminal_exec tool call.
func (t *TerminalExecTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line := strings.TrimSpace(req.GetString("line", ""))
	if line == "" {
		return mcp.NewToolResultError("'line' is required"), nil
	}
	out := t.term.Submit(ctx, line)
	if out.Superseded {
		return mcp.NewToolResultError("tool call superseded by a newer call"), nil
	}
	return jsonText(out)
}
