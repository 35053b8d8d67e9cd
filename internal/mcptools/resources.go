package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/labos/internal/knowledge"
)

// StatsURI addresses the knowledge index statistics resource.
const StatsURI = "labos://knowledge/stats"

// StatsResource serves the per-source entry counts of the index.
type StatsResource struct {
	index *knowledge.Index
}

// NewStatsResource creates a StatsResource.
func NewStatsResource(idx *knowledge.Index) *StatsResource {
	return &StatsResource{index: idx}
}

// Definition returns the MCP resource definition.
func (r *StatsResource) Definition() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Knowledge Index Stats",
		mcp.WithResourceDescription("Entry counts per source and the approximate token size of the local knowledge index"),
		mcp.WithMIMEType("application/json"),
	)
}

// Handle returns the stats as JSON.
func (r *StatsResource) Handle(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(r.index.Stats(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcptools: marshal stats: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
