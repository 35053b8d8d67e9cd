// Package terminal drives one pseudo-terminal session: it routes each
// submitted line to the deterministic interpreter, a tool call or an LLM
// escalation, enforces the per-session quotas and renders the result as
// display entries.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/HendryAvila/labos/internal/assemble"
	"github.com/HendryAvila/labos/internal/chat"
	"github.com/HendryAvila/labos/internal/command"
	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/logger"
	"github.com/HendryAvila/labos/internal/retrieval"
	"github.com/HendryAvila/labos/internal/router"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/tools"
)

// Retrieval sizes for escalations.
const (
	askSearchK     = 5
	askExpandLimit = 8
)

// BannerHint is the second line of the start-up banner.
const BannerHint = `Type "help" for commands or "ask <question>" for LLM mode.`

var askPattern = regexp.MustCompile(`(?i)^ask(\s|$)`)

// ─── Output ──────────────────────────────────────────────────────────────────

// Kind is the display category of an Entry.
type Kind string

const (
	KindCommand Kind = "command"
	KindOutput  Kind = "output"
	KindSystem  Kind = "system"
)

// Entry is one display line.
type Entry struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Output is the result of one submitted line. Action carries a navigation
// effect (navigate, external, mailto, tel) for the caller to perform.
// Cleared means the display should be replaced by Entries. A Superseded
// output belongs to a tool call that a later one replaced; it carries no
// entries and should be ignored.
type Output struct {
	Entries    []Entry        `json:"entries"`
	Action     command.Action `json:"action"`
	Cleared    bool           `json:"cleared,omitempty"`
	Superseded bool           `json:"superseded,omitempty"`
}

func (o *Output) add(kind Kind, lines ...string) {
	for _, l := range lines {
		o.Entries = append(o.Entries, Entry{Kind: kind, Text: l})
	}
}

// ─── Dependencies ────────────────────────────────────────────────────────────

// Store persists session state. *session.Store implements it.
type Store interface {
	LoadSettings(key string) (session.Settings, bool, error)
	SaveSettings(key string, s session.Settings) error
	EnsureSession(id string) error
	LoadCounters(id string) (session.Counters, error)
	SaveCounters(id string, c session.Counters) error
	AppendTurns(id string, turns ...session.Turn) error
	Turns(id string, limit int) ([]session.Turn, error)
}

// ToolCaller runs tool calls. *tools.Dispatcher implements it.
type ToolCaller interface {
	Call(ctx context.Context, call tools.Call) tools.Envelope
}

// Deps are the collaborators of a Terminal. Corpus is required; nil fields
// are derived from it or replaced by defaults. A nil Completer makes every
// escalation fail with a configuration error; a nil Store keeps state in
// memory only.
type Deps struct {
	Corpus      *corpus.Corpus
	Index       *knowledge.Index
	Interpreter *command.Interpreter
	Router      *router.Router
	Builder     *assemble.Builder
	Completer   chat.Completer
	Tools       ToolCaller
	Store       Store
	Logger      logger.Logger
	SessionID   string
	SettingsKey string
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithSettings sets the initial settings. Stored settings still win.
func WithSettings(s session.Settings) Option {
	return func(t *Terminal) { t.settings = s.Sanitize() }
}

// WithVerifyCap overrides session.DefaultVerifyCap.
func WithVerifyCap(n int) Option {
	return func(t *Terminal) {
		if n > 0 {
			t.verifyCap = n
		}
	}
}

// ─── Terminal ────────────────────────────────────────────────────────────────

// Terminal is one interactive session. Submit is safe for concurrent use;
// external calls run without holding the state lock.
type Terminal struct {
	corpus    *corpus.Corpus
	index     *knowledge.Index
	interp    *command.Interpreter
	router    *router.Router
	builder   *assemble.Builder
	completer chat.Completer
	tools     ToolCaller
	store     Store
	log       logger.Logger
	id        string
	key       string
	verifyCap int

	mu         sync.Mutex
	settings   session.Settings
	counters   session.Counters
	history    []session.Turn
	lastVerify *assemble.VerifyContext
	escalating bool
	toolGen    uint64
	toolCancel context.CancelFunc
}

// New creates a Terminal and loads any persisted state for its session.
func New(deps Deps, opts ...Option) (*Terminal, error) {
	if deps.Corpus == nil {
		return nil, errors.New("terminal: corpus is required")
	}
	t := &Terminal{
		corpus:    deps.Corpus,
		index:     deps.Index,
		interp:    deps.Interpreter,
		router:    deps.Router,
		builder:   deps.Builder,
		completer: deps.Completer,
		tools:     deps.Tools,
		store:     deps.Store,
		log:       deps.Logger,
		id:        deps.SessionID,
		key:       deps.SettingsKey,
		verifyCap: session.DefaultVerifyCap,
		settings:  session.Defaults(),
	}
	if t.index == nil {
		idx, err := knowledge.Build(t.corpus)
		if err != nil {
			return nil, fmt.Errorf("terminal: build index: %w", err)
		}
		t.index = idx
	}
	if t.interp == nil {
		in, err := command.New(command.ContentFrom(t.corpus, t.index.Stats()))
		if err != nil {
			return nil, fmt.Errorf("terminal: %w", err)
		}
		t.interp = in
	}
	if t.router == nil {
		t.router = router.New()
	}
	if t.builder == nil {
		t.builder = assemble.NewBuilder(t.corpus)
	}
	if t.tools == nil {
		t.tools = tools.NewDispatcher(t.index, t.corpus, nil)
	}
	if t.log == nil {
		t.log = logger.Nop()
	}
	if t.id == "" {
		t.id = uuid.NewString()
	}
	if t.key == "" {
		t.key = session.SettingsKey
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("session", t.id)
	t.restore()
	return t, nil
}

func (t *Terminal) restore() {
	if t.store == nil {
		return
	}
	if s, ok, err := t.store.LoadSettings(t.key); err != nil {
		t.log.Warn("load settings", "err", err)
	} else if ok {
		t.settings = s
	}
	if err := t.store.EnsureSession(t.id); err != nil {
		t.log.Warn("register session", "err", err)
		return
	}
	if c, err := t.store.LoadCounters(t.id); err != nil {
		t.log.Warn("load counters", "err", err)
	} else {
		t.counters = c
	}
	// The store's configured maximum bounds what is read back; stored turns
	// are never deleted.
	if turns, err := t.store.Turns(t.id, 0); err != nil {
		t.log.Warn("load turns", "err", err)
	} else {
		t.history = turns
	}
}

// SessionID returns the session identifier.
func (t *Terminal) SessionID() string { return t.id }

// Prompt returns the command prompt, e.g. "DG-Labs:~$".
func (t *Terminal) Prompt() string { return t.corpus.Profile.Name + ":~$" }

// Banner returns the start-up lines, also shown after clear.
func (t *Terminal) Banner() []Entry {
	return []Entry{
		{Kind: KindSystem, Text: t.corpus.Profile.Name + " Agents Runtime v2"},
		{Kind: KindSystem, Text: BannerHint},
	}
}

// Settings returns the current settings.
func (t *Terminal) Settings() session.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetSettings replaces the settings and persists them.
func (t *Terminal) SetSettings(s session.Settings) {
	s = s.Sanitize()
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
	t.saveSettings(s)
}

// Counters returns a copy of the session counters.
func (t *Terminal) Counters() session.Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters.Clone()
}

// History returns a copy of the conversation turns.
func (t *Terminal) History() []session.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// ─── Submit ──────────────────────────────────────────────────────────────────

// Submit processes one input line.
func (t *Terminal) Submit(ctx context.Context, line string) Output {
	raw := strings.TrimSpace(line)
	var out Output
	if raw == "" {
		return out
	}
	out.add(KindCommand, t.Prompt()+" "+raw)

	t.mu.Lock()
	busy, settings := t.escalating, t.settings
	t.mu.Unlock()
	if busy {
		out.add(KindSystem, "LLM request in progress.")
		return out
	}

	cmd := raw
	if !command.IsDeterministic(cmd) && !askPattern.MatchString(cmd) {
		if r := t.router.Route(cmd); r.Accepted() {
			t.log.Debug("routed", "input", raw, "command", r.Command, "rule", r.Rule, "confidence", r.Confidence)
			if settings.RouterDebug {
				out.add(KindSystem, fmt.Sprintf(`router: "%s" -> "%s" (%d%%)`, raw, r.Command, int(math.Round(r.Confidence*100))))
			}
			cmd = r.Command
		}
	}

	if askPattern.MatchString(cmd) || (settings.LLMFallback && !command.IsDeterministic(cmd)) {
		t.escalate(ctx, cmd, &out)
		return out
	}
	return t.execute(ctx, t.interp.Execute(cmd), out)
}

// execute performs the side effect of a deterministic response.
func (t *Terminal) execute(ctx context.Context, resp command.Response, out Output) Output {
	out.add(KindOutput, resp.Lines...)
	action := resp.Action

	switch action.Kind {
	case command.ActionNone:
	case command.ActionNavigate, command.ActionExternal, command.ActionMailto, command.ActionTel:
		out.Action = action
	case command.ActionClear:
		return Output{Entries: t.Banner(), Action: action, Cleared: true}
	case command.ActionSetMode:
		t.mu.Lock()
		t.settings.Mode = action.Mode
		s := t.settings
		t.mu.Unlock()
		t.saveSettings(s)
	case command.ActionVerify:
		out.add(KindSystem, fmt.Sprintf(`verify: searching web for "%s"...`, action.Query))
		return t.callTool(ctx, tools.WebVerify, map[string]any{"query": action.Query}, out)
	case command.ActionListTools:
		out.add(KindOutput, ToolStatus(t.Counters(), t.verifyCap)...)
	case command.ActionToolCall:
		out.add(KindSystem, fmt.Sprintf("tool: executing %s...", action.Tool))
		return t.callTool(ctx, action.Tool, action.Input, out)
	case command.ActionResetCounters:
		t.mu.Lock()
		t.counters.Reset()
		c := t.counters.Clone()
		t.mu.Unlock()
		t.saveCounters(c)
		out.add(KindSystem, "LLM session counter reset.")
	default:
		t.log.Error("unhandled action", "kind", action.Kind)
	}
	return out
}

// ─── Tools ───────────────────────────────────────────────────────────────────

// callTool runs one tool call. A newer call cancels this one; its result is
// then discarded.
func (t *Terminal) callTool(ctx context.Context, name tools.Name, input map[string]any, out Output) Output {
	if name == tools.WebVerify {
		t.mu.Lock()
		ok := t.counters.NextVerify(t.verifyCap)
		c := t.counters.Clone()
		t.mu.Unlock()
		t.saveCounters(c)
		if !ok {
			out.add(KindSystem, fmt.Sprintf("Verify session cap reached (%d). Use local context commands or refresh session.", t.verifyCap))
			return out
		}
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.mu.Lock()
	if t.toolCancel != nil {
		t.toolCancel()
	}
	t.toolGen++
	gen := t.toolGen
	t.toolCancel = cancel
	t.mu.Unlock()

	env := t.tools.Call(callCtx, tools.Call{Tool: name, Input: input})

	t.mu.Lock()
	if gen != t.toolGen {
		t.mu.Unlock()
		t.log.Debug("tool call superseded", "tool", name)
		return Output{Superseded: true}
	}
	t.toolCancel = nil
	if env.OK {
		t.counters.UseTool(string(name))
		if res, ok := env.Result.(tools.VerifyResult); ok {
			t.lastVerify = &assemble.VerifyContext{Query: res.Query, Summary: res.Summary, Sources: res.Sources}
		}
	}
	c := t.counters.Clone()
	t.mu.Unlock()
	t.saveCounters(c)

	if !env.OK {
		t.log.Warn("tool call failed", "tool", name, "code", env.Code, "message", env.Message)
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("Tool %s failed.", name)
		}
		out.add(KindSystem, msg)
		return out
	}

	switch res := env.Result.(type) {
	case tools.ContextResult:
		out.add(KindSystem, ContextEnvelope(res)...)
	case tools.VerifyResult:
		out.add(KindSystem, VerifyEnvelope(res)...)
	case tools.AppResult:
		out.add(KindOutput, fmt.Sprintf("Opening %s -> %s", res.Target, res.Href))
		out.Action = command.Navigate(res.Href)
	case tools.ProjectsResult:
		out.add(KindOutput, ProjectsEnvelope(res)...)
	default:
		out.add(KindSystem, fmt.Sprintf("Tool %s returned an unexpected result.", name))
	}
	return out
}

// ─── Escalation ──────────────────────────────────────────────────────────────

func (t *Terminal) escalate(ctx context.Context, raw string, out *Output) {
	query := assemble.NormalizeQuery(raw, session.MaxQueryChars)
	if query == "" {
		out.add(KindOutput, "Usage: ask <question>")
		return
	}

	t.mu.Lock()
	if t.escalating {
		t.mu.Unlock()
		out.add(KindSystem, "LLM request in progress.")
		return
	}
	settings := t.settings
	ok := t.counters.NextLLM(settings.SessionCap)
	c := t.counters.Clone()
	history := slices.Clone(t.history)
	last := t.lastVerify
	if ok {
		t.escalating = true
	}
	t.mu.Unlock()
	t.saveCounters(c)

	if !ok {
		out.add(KindSystem, fmt.Sprintf("LLM session cap reached (%d). Use deterministic commands (help/projects/search/open).", settings.SessionCap))
		return
	}
	defer func() {
		t.mu.Lock()
		t.escalating = false
		t.mu.Unlock()
	}()

	hits := retrieval.Expand(t.index, retrieval.Search(t.index, query, askSearchK), retrieval.Options{Limit: askExpandLimit})
	res, err := t.builder.Build(assemble.Request{
		Query:   query,
		History: history,
		Hits:    hits,
		Verify:  last,
		Mode:    settings.Mode,
	})
	if err != nil {
		t.log.Error("assemble context", "err", err)
		out.add(KindSystem, failureLine(chat.CodeConfig))
		return
	}
	t.log.Debug(res.Trace.String())

	if t.completer == nil {
		out.add(KindSystem, failureLine(chat.CodeConfig))
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, settings.Timeout())
	defer cancel()
	answer, err := t.completer.Complete(callCtx, res.Messages)
	if err != nil {
		code := chat.CodeOf(err)
		t.log.Warn("escalation failed", "code", code, "err", err)
		if code == chat.CodeTimeout || errors.Is(err, context.DeadlineExceeded) {
			out.add(KindSystem, fmt.Sprintf("LLM timed out after %ds.", int(math.Round(settings.Timeout().Seconds()))))
			return
		}
		out.add(KindSystem, failureLine(code))
		return
	}

	turns := []session.Turn{
		{Role: session.RoleUser, Content: query},
		{Role: session.RoleAssistant, Content: answer},
	}
	t.mu.Lock()
	t.history = append(t.history, turns...)
	t.mu.Unlock()
	if t.store != nil {
		if err := t.store.AppendTurns(t.id, turns...); err != nil {
			t.log.Warn("save turns", "err", err)
		}
	}

	out.add(KindOutput, answer)
	out.add(KindSystem, AskEnvelope(hits, settings.ShowSources)...)
}

func failureLine(code chat.Code) string {
	return fmt.Sprintf(`LLM request failed (%s). Try again, or use deterministic commands with "help".`, code)
}

// ─── Persistence ─────────────────────────────────────────────────────────────

func (t *Terminal) saveSettings(s session.Settings) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveSettings(t.key, s); err != nil {
		t.log.Warn("save settings", "err", err)
	}
}

func (t *Terminal) saveCounters(c session.Counters) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveCounters(t.id, c); err != nil {
		t.log.Warn("save counters", "err", err)
	}
}
