package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/labos/internal/assemble"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/retrieval"
	"github.com/HendryAvila/labos/internal/session"
)

const (
	briefSearchK     = 5
	briefExpandLimit = 8
)

// BriefPrompt handles the labos-brief MCP prompt. It hands the host the same
// grounded context the terminal would send for an escalated question, so
// the host model can answer it directly.
type BriefPrompt struct {
	index   *knowledge.Index
	builder *assemble.Builder
}

// NewBriefPrompt creates a BriefPrompt.
func NewBriefPrompt(idx *knowledge.Index, b *assemble.Builder) *BriefPrompt {
	return &BriefPrompt{index: idx, builder: b}
}

// Definition returns the MCP prompt definition.
func (p *BriefPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("labos-brief",
		mcp.WithPromptDescription("Answer a question about the portfolio owner using the grounded terminal context."),
		mcp.WithArgument("question",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The visitor question"),
		),
		mcp.WithArgument("mode",
			mcp.ArgumentDescription("Answer style: concise (default), explainer or research"),
		),
	)
}

// Handle processes the labos-brief prompt request.
func (p *BriefPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	question := args["question"]
	mode, ok := session.ParseMode(args["mode"])
	if !ok {
		mode = session.ModeConcise
	}

	query := assemble.NormalizeQuery(question, session.MaxQueryChars)
	hits := retrieval.Expand(p.index, retrieval.Search(p.index, query, briefSearchK), retrieval.Options{Limit: briefExpandLimit})
	res, err := p.builder.Build(assemble.Request{Query: question, Hits: hits, Mode: mode})
	if errors.Is(err, assemble.ErrEmptyQuery) {
		return nil, errors.New("mcptools: 'question' is required")
	}
	if err != nil {
		return nil, fmt.Errorf("mcptools: build context: %w", err)
	}

	system, user := res.Messages[0], res.Messages[len(res.Messages)-1]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Grounded brief (%s)", res.Trace.Class),
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(system.Content)},
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(user.Content)},
		},
	}, nil
}
