package command

import (
	"fmt"
	"strings"
)

var helpEntries = []struct{ usage, desc string }{
	{"help", "Show this list"},
	{"whoami", "%s summary"},
	{"open <app>", "Open app: projects|notes|resume|news|network|desktop"},
	{"open <link>", "Open link: github|linkedin|email|phone"},
	{"projects", "List workbench projects"},
	{"project <id>", "Show one project details"},
	{"resume", "Show resume and open target"},
	{"links", "Show key links"},
	{"now", "Current focus"},
	{"network", "Network graph summary"},
	{"search <query>", "Search projects, notes, and network"},
	{"sources", "Show knowledge index sources"},
	{"context <query>", "Rank local knowledge for a query"},
	{"mode <name>", "Set brain mode: concise|explainer|research"},
	{"verify <query>", "Check a claim against web sources"},
	{"tools", "Show tool usage for this session"},
	{"tool <name> <args>", "Call local_context|web_verify|open_app|list_projects"},
	{"reset", "Reset LLM and verify session counters"},
	{"ask <question>", "Ask the LLM with grounded local context"},
	{"clear", "Clear terminal output"},
}

// helpLines renders the help text. Descriptions may carry one %s for the
// profile name.
func helpLines(name string) []string {
	lines := make([]string, 0, len(helpEntries)+1)
	lines = append(lines, "Available commands:")
	for _, e := range helpEntries {
		desc := e.desc
		if strings.Contains(desc, "%s") {
			desc = fmt.Sprintf(desc, name)
		}
		lines = append(lines, fmt.Sprintf("  %-28s %s", e.usage, desc))
	}
	return lines
}
