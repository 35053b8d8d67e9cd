package assemble

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/session"
)

const highlightCount = 4

var modeInstructions = map[session.Mode]string{
	session.ModeConcise:   "Mode: concise. Answer in at most three short sentences.",
	session.ModeExplainer: "Mode: explainer. Explain step by step and give a brief example when it helps.",
	session.ModeResearch:  "Mode: research. Be thorough, separate known facts from inference, and name gaps in the context.",
}

// preamble renders the fixed part of the system message: identity contract,
// behavioral rules, mode, query focus and the top content highlights.
func (b *Builder) preamble(mode session.Mode, class knowledge.Class, budgets Budgets) string {
	c := b.Corpus
	if c == nil {
		c = &corpus.Corpus{}
	}
	instructions, ok := modeInstructions[mode]
	if !ok {
		instructions = modeInstructions[session.ModeConcise]
	}

	p := c.Profile
	lines := []string{
		fmt.Sprintf("You are the %s OS terminal brain.", p.Name),
		"Speak plainly and practically.",
		"Use only provided context for personal/work claims; if unknown, say so.",
		`If a question needs external verification, suggest "verify <query>" for web citations.`,
		instructions,
		fmt.Sprintf("Query focus: %s.", class),
		"",
		fmt.Sprintf("Identity: %s | role: %s | focus: %s", p.Name, p.Role, p.RoleFocus),
		"Location: " + p.Location,
		"",
		"Top workbench systems:",
	}
	for _, proj := range c.Projects[:min(len(c.Projects), highlightCount)] {
		lines = append(lines, Truncate(fmt.Sprintf("- %s: %s", proj.Title, proj.Summary), budgets.Highlight))
	}

	lines = append(lines, "", "Top deep dives:")
	n := 0
	for _, note := range c.Notes {
		if n == highlightCount {
			break
		}
		if note.Kind != corpus.NoteDeepDive {
			continue
		}
		lines = append(lines, Truncate(fmt.Sprintf("- %s: %s", note.Title, note.Subtitle), budgets.Highlight))
		n++
	}

	lines = append(lines, "", fmt.Sprintf("Network stats: nodes=%d, projects=%d, research=%d, experience=%d",
		len(c.Network),
		c.CountKind(corpus.KindProject),
		c.CountKind(corpus.KindResearch),
		c.CountKind(corpus.KindExperience),
	))
	return strings.Join(lines, "\n")
}
