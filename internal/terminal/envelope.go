package terminal

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/labos/internal/retrieval"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/tools"
	"github.com/HendryAvila/labos/internal/verify"
)

// Display caps for tool results.
const (
	maxToolHits     = 8
	maxToolProjects = 12
)

// AskEnvelope describes what grounded an escalated answer.
func AskEnvelope(hits []retrieval.Hit, showSources bool) []string {
	lines := []string{
		"[local_context]",
		fmt.Sprintf("- hits: %d", len(hits)),
		"- scope: personal/workbench/notes/network index",
	}
	switch {
	case len(hits) == 0:
		lines = append(lines, "- citations: none matched")
	case showSources:
		cites := make([]string, len(hits))
		for i, h := range hits {
			cites[i] = fmt.Sprintf("%s:%s", h.Source, h.Title)
		}
		lines = append(lines, "- citations: "+strings.Join(cites, " | "))
	default:
		lines = append(lines, `- citations: hidden (toggle "Show LLM source footer" to view)`)
	}
	return append(lines,
		"[web_context]",
		"- not used in ask mode",
		"- use `verify <query>` for web-grounded citations",
	)
}

// VerifyEnvelope renders a web verification result.
func VerifyEnvelope(res verify.Result) []string {
	lines := []string{
		"[local_context]",
		"- not used in verify mode",
		"[web_context]",
		"- summary: " + res.Summary,
		fmt.Sprintf("- citations: %d", len(res.Sources)),
	}
	for i, s := range res.Sources {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, s.Title),
			"   "+s.URL,
			"   "+s.Snippet,
		)
	}
	return lines
}

// ContextEnvelope renders a local_context result.
func ContextEnvelope(res tools.ContextResult) []string {
	lines := []string{
		"[local_context]",
		"- query: " + res.Query,
		fmt.Sprintf("- hits: %d", len(res.Hits)),
		"[web_context]",
		"- not used in local_context tool",
	}
	for i, h := range res.Hits[:min(len(res.Hits), maxToolHits)] {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, h.Source, h.Title), "   "+h.Snippet)
		if h.URL != "" {
			lines = append(lines, "   "+h.URL)
		}
	}
	return lines
}

// ProjectsEnvelope renders a list_projects result.
func ProjectsEnvelope(res tools.ProjectsResult) []string {
	lines := []string{fmt.Sprintf("Tool list_projects returned %d project(s):", res.Count)}
	for _, p := range res.Projects[:min(len(res.Projects), maxToolProjects)] {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", p.ID, p.Title, p.Subtitle))
	}
	return lines
}

// ToolStatus renders per-tool usage for the current session.
func ToolStatus(c session.Counters, verifyCap int) []string {
	lines := []string{"Tool status:"}
	for _, name := range tools.Names {
		line := fmt.Sprintf("- %s: used %d time(s)", name, c.Tools[string(name)])
		if name == tools.WebVerify {
			line += fmt.Sprintf(", cap %d", verifyCap)
		}
		lines = append(lines, line)
	}
	return lines
}
