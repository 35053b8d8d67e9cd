package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/retrieval"
)

const (
	defaultExpandLimit = 8
	maxExpandLimit     = 25
	// seedScore ranks the starting entry above everything it introduces.
	seedScore = 10
)

// ExpandTool handles the knowledge_expand MCP tool.
type ExpandTool struct {
	index *knowledge.Index
}

// NewExpandTool creates an ExpandTool.
func NewExpandTool(idx *knowledge.Index) *ExpandTool {
	return &ExpandTool{index: idx}
}

// Definition returns the MCP tool definition for knowledge_expand.
func (t *ExpandTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_expand",
		mcp.WithDescription(
			"Walk the relation graph of the knowledge index from one entry id "+
				"(e.g. project-ai-news-hub, network-<id>, note-<id>) and return the entries it reaches.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry id to start from"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max entries including the start (default: %d, max: %d)", defaultExpandLimit, maxExpandLimit)),
		),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Max relation hops (default: %d, max: %d)", retrieval.DefaultDepth, retrieval.MaxDepth)),
		),
	)
}

// Handle processes the knowledge_expand tool call.
func (t *ExpandTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	entry, ok := t.index.ByID(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown entry id %q", id)), nil
	}

	limit := min(max(intArg(req, "limit", defaultExpandLimit), 1), maxExpandLimit)
	hits := retrieval.Expand(t.index, []retrieval.Hit{{Entry: entry, Score: seedScore}}, retrieval.Options{
		Limit:    limit,
		MaxDepth: intArg(req, "depth", retrieval.DefaultDepth),
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Expanded %s to %d entries:\n\n", id, len(hits))
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. [%s] %s (id: %s, depth: %d", i+1, h.Source, h.Title, h.ID, h.Depth)
		if h.Via != "" {
			fmt.Fprintf(&b, ", via: %s", h.Via)
		}
		b.WriteString(")\n")
		if h.URL != "" {
			fmt.Fprintf(&b, "   %s\n", h.URL)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
