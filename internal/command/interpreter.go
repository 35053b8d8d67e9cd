// Package command interprets the fixed terminal command grammar. The
// interpreter is pure: it computes response lines and an Action, and the
// caller performs any side effect the Action names.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/tools"
)

// Output caps.
const (
	maxSearchLines = 12
	maxStackItems  = 6
)

// ErrInvalidContent reports a content bundle the interpreter cannot serve.
var ErrInvalidContent = errors.New("command: invalid content")

// Content is the read-only bundle commands answer from.
type Content struct {
	Profile  corpus.Profile
	Projects []corpus.Project
	Notes    []corpus.Note
	Network  []corpus.NetworkNode
	// Sources feeds the sources command.
	Sources knowledge.Stats
}

// ContentFrom assembles a Content from a corpus and its index stats.
func ContentFrom(c *corpus.Corpus, stats knowledge.Stats) Content {
	return Content{
		Profile:  c.Profile,
		Projects: c.Projects,
		Notes:    c.Notes,
		Network:  c.Network,
		Sources:  stats,
	}
}

// Interpreter executes grammar commands against a Content bundle.
type Interpreter struct {
	content Content
	help    []string
}

type handler func(in *Interpreter, args string) Response

// commands maps each grammar command to its handler.
var commands = map[string]handler{
	"help":     (*Interpreter).cmdHelp,
	"whoami":   (*Interpreter).cmdWhoami,
	"open":     (*Interpreter).cmdOpen,
	"projects": (*Interpreter).cmdProjects,
	"project":  (*Interpreter).cmdProject,
	"resume":   (*Interpreter).cmdResume,
	"links":    (*Interpreter).cmdLinks,
	"now":      (*Interpreter).cmdNow,
	"network":  (*Interpreter).cmdNetwork,
	"search":   (*Interpreter).cmdSearch,
	"sources":  (*Interpreter).cmdSources,
	"context":  (*Interpreter).cmdContext,
	"mode":     (*Interpreter).cmdMode,
	"verify":   (*Interpreter).cmdVerify,
	"tools":    (*Interpreter).cmdTools,
	"tool":     (*Interpreter).cmdTool,
	"reset":    (*Interpreter).cmdReset,
	"clear":    (*Interpreter).cmdClear,
}

// New validates content and creates an Interpreter.
func New(content Content) (*Interpreter, error) {
	if strings.TrimSpace(content.Profile.Name) == "" {
		return nil, fmt.Errorf("%w: profile name is required", ErrInvalidContent)
	}
	seen := make(map[string]bool, len(content.Projects))
	for i, p := range content.Projects {
		id := strings.ToLower(strings.TrimSpace(p.ID))
		if id == "" {
			return nil, fmt.Errorf("%w: project %d has no id", ErrInvalidContent, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate project id %q", ErrInvalidContent, p.ID)
		}
		seen[id] = true
	}
	return &Interpreter{content: content, help: helpLines(content.Profile.Name)}, nil
}

// IsDeterministic reports whether the first token of raw names a grammar
// command.
func IsDeterministic(raw string) bool {
	name, _ := split(raw)
	_, ok := commands[name]
	return ok
}

// Commands returns the grammar command names in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute interprets one line. It never fails: bad input yields explanatory
// lines and ActionNone.
func (in *Interpreter) Execute(raw string) Response {
	input := strings.TrimSpace(raw)
	if input == "" {
		return reply(None())
	}
	name, args := split(input)
	h, ok := commands[name]
	if !ok {
		return reply(None(), "Unknown command: "+input, `Run "help" to list commands.`)
	}
	return h(in, args)
}

// split returns the lower-cased first token and the trimmed remainder with
// its case preserved.
func split(raw string) (name, args string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ""
	}
	name = strings.ToLower(fields[0])
	rest := strings.TrimSpace(raw)
	args = strings.TrimSpace(rest[len(fields[0]):])
	return name, args
}

// ─── Profile commands ────────────────────────────────────────────────────────

func (in *Interpreter) cmdHelp(string) Response {
	return reply(None(), slices.Clone(in.help)...)
}

func (in *Interpreter) cmdWhoami(string) Response {
	p := in.content.Profile
	return reply(None(),
		p.Name+" // cognitive interface",
		p.Role,
		"Focus: "+p.RoleFocus,
		"Location: "+p.Location,
	)
}

func (in *Interpreter) cmdResume(string) Response {
	return reply(None(),
		"Timeline module ready.",
		"PDF: "+in.content.Profile.ResumeURL,
		`Use "open resume" to navigate.`,
	)
}

func (in *Interpreter) cmdLinks(string) Response {
	p := in.content.Profile
	return reply(None(),
		"GitHub: "+p.Social.GitHub,
		"LinkedIn: "+p.Social.LinkedIn,
		"Email: mailto:"+p.Email,
		"Call: tel:"+p.Phone,
	)
}

func (in *Interpreter) cmdNow(string) Response {
	lines := []string{"Active focus:"}
	for _, f := range in.content.Profile.Focus {
		lines = append(lines, "- "+f)
	}
	return reply(None(), lines...)
}

// ─── Navigation ──────────────────────────────────────────────────────────────

func (in *Interpreter) cmdOpen(args string) Response {
	target := strings.ToLower(args)
	if href, ok := corpus.ResolveApp(target); ok {
		return reply(Navigate(href), fmt.Sprintf("Opening %s...", target))
	}

	p := in.content.Profile
	var action Action
	switch target {
	case "github":
		action = External(p.Social.GitHub)
	case "linkedin":
		action = External(p.Social.LinkedIn)
	case "email":
		if p.Email != "" {
			action = Mailto("mailto:" + p.Email)
		}
	case "phone":
		if p.Phone != "" {
			action = Tel("tel:" + p.Phone)
		}
	}
	if action.Href == "" {
		return reply(None(), fmt.Sprintf("Unknown target %q. Try: %s.", args, strings.Join(corpus.AppNames, ", ")))
	}
	return reply(action, fmt.Sprintf("Opening %s...", target))
}

func (in *Interpreter) cmdClear(string) Response {
	return reply(Clear())
}

// ─── Content commands ────────────────────────────────────────────────────────

func (in *Interpreter) cmdProjects(string) Response {
	lines := []string{"Workbench projects:"}
	for _, p := range in.content.Projects {
		lines = append(lines, fmt.Sprintf("- %s: %s", p.ID, p.Title))
	}
	return reply(None(), lines...)
}

func (in *Interpreter) cmdProject(args string) Response {
	id := strings.ToLower(args)
	i := slices.IndexFunc(in.content.Projects, func(p corpus.Project) bool {
		return strings.ToLower(p.ID) == id
	})
	if id == "" || i < 0 {
		return reply(None(), fmt.Sprintf(`Project %q not found. Run "projects" to list valid ids.`, args))
	}
	p := in.content.Projects[i]
	lines := []string{
		fmt.Sprintf("%s (%s)", p.Title, p.ID),
		p.Subtitle,
		p.Summary,
		"Stack: " + strings.Join(p.Stack[:min(len(p.Stack), maxStackItems)], ", "),
	}
	if link := p.Links.Primary(); link != "" {
		lines = append(lines, "Primary link: "+link)
	}
	return reply(None(), lines...)
}

func (in *Interpreter) cmdNetwork(string) Response {
	var projects, research, experience int
	for _, n := range in.content.Network {
		switch n.Kind {
		case corpus.KindProject:
			projects++
		case corpus.KindResearch:
			research++
		case corpus.KindExperience:
			experience++
		}
	}
	return reply(None(),
		fmt.Sprintf("Network nodes: %d", len(in.content.Network)),
		fmt.Sprintf("Projects: %d", projects),
		fmt.Sprintf("Research: %d", research),
		fmt.Sprintf("Experience: %d", experience),
		`Use "open network" to explore the graph.`,
	)
}

func (in *Interpreter) cmdSearch(args string) Response {
	if args == "" {
		return reply(None(), "Usage: search <query>")
	}
	q := strings.ToLower(args)

	var hits []string
	for _, p := range in.content.Projects {
		text := join(p.Title, p.Subtitle, p.Summary, strings.Join(p.Stack, " "))
		if strings.Contains(text, q) {
			hits = append(hits, "project: "+p.Title)
		}
	}
	for _, n := range in.content.Notes {
		if strings.Contains(join(n.Title, n.Subtitle, strings.Join(n.Tags, " ")), q) {
			hits = append(hits, "note: "+n.Title)
		}
	}
	for _, n := range in.content.Network {
		text := join(n.Title, n.Subtitle, strings.Join(n.Tags, " "), strings.Join(n.Bullets, " "))
		if strings.Contains(text, q) {
			hits = append(hits, "node: "+n.Title)
		}
	}

	if len(hits) == 0 {
		return reply(None(), fmt.Sprintf("No results for %q.", args))
	}
	lines := []string{fmt.Sprintf("Results for %q (%d):", args, len(hits))}
	lines = append(lines, hits[:min(len(hits), maxSearchLines)]...)
	return reply(None(), lines...)
}

func (in *Interpreter) cmdSources(string) Response {
	s := in.content.Sources
	return reply(None(),
		"Knowledge index sources:",
		fmt.Sprintf("- profile: %d", s.Profile),
		fmt.Sprintf("- project: %d", s.Project),
		fmt.Sprintf("- note: %d (chunks: %d)", s.Note, s.Chunks),
		fmt.Sprintf("- network: %d", s.Network),
		fmt.Sprintf("Total entries: %d (~%d tokens)", s.Total, s.Tokens),
	)
}

func join(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

// ─── Runtime commands ────────────────────────────────────────────────────────

func (in *Interpreter) cmdMode(args string) Response {
	mode, ok := session.ParseMode(args)
	if !ok {
		names := make([]string, len(session.Modes))
		for i, m := range session.Modes {
			names[i] = string(m)
		}
		return reply(None(), "Usage: mode "+strings.Join(names, "|"))
	}
	return reply(SetMode(mode), fmt.Sprintf("Brain mode set to %s.", mode))
}

func (in *Interpreter) cmdVerify(args string) Response {
	if args == "" {
		return reply(None(), "Usage: verify <query>")
	}
	return reply(Verify(args))
}

func (in *Interpreter) cmdContext(args string) Response {
	if args == "" {
		return reply(None(), "Usage: context <query>")
	}
	return reply(ToolCall(tools.LocalContext, map[string]any{"query": args}))
}

func (in *Interpreter) cmdTools(string) Response {
	return reply(ListTools())
}

func (in *Interpreter) cmdReset(string) Response {
	return reply(ResetCounters())
}

func (in *Interpreter) cmdTool(args string) Response {
	rawName, rest, _ := strings.Cut(args, " ")
	name, ok := tools.ParseName(rawName)
	if !ok {
		names := make([]string, len(tools.Names))
		for i, n := range tools.Names {
			names[i] = string(n)
		}
		return reply(None(), fmt.Sprintf("Usage: tool <%s> <args>", strings.Join(names, "|")))
	}

	input, ok := toolInput(name, strings.TrimSpace(rest))
	if !ok {
		return reply(None(), "Usage: "+name.Usage())
	}
	return reply(ToolCall(name, input))
}

// toolInput parses tool arguments: a JSON object, or free text assigned to
// the tool's primary field.
func toolInput(name tools.Name, args string) (map[string]any, bool) {
	if strings.HasPrefix(args, "{") {
		var input map[string]any
		if err := json.Unmarshal([]byte(args), &input); err != nil || input == nil {
			return nil, false
		}
		return input, true
	}
	field := name.PrimaryField()
	if field == "" {
		return nil, true
	}
	if args == "" {
		return nil, false
	}
	return map[string]any{field: args}, true
}
