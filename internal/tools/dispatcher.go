// Package tools implements the terminal tool-call interface: local knowledge
// lookup, web verification, app resolution and project listing, each
// answering with a normalized Envelope.
package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/retrieval"
	"github.com/HendryAvila/labos/internal/verify"
)

// Limits for local_context.
const (
	DefaultContextLimit = 5
	MaxContextLimit     = 10
	minQueryChars       = 2
)

// DefaultTimeout bounds one tool call.
const DefaultTimeout = 10 * time.Second

// Error is a classified tool failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("tools: %s: %s", e.Code, e.Message) }

func invalidInput(format string, args ...any) error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ─── Dispatcher ──────────────────────────────────────────────────────────────

// Dispatcher runs tool calls against a knowledge index, a corpus and a web
// verifier. It is safe for concurrent use.
type Dispatcher struct {
	index    *knowledge.Index
	corpus   *corpus.Corpus
	verifier verify.Verifier
	timeout  time.Duration
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Dispatcher) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithClock overrides the clock used for error timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Dispatcher) { t.now = now }
}

// NewDispatcher creates a Dispatcher. v may be nil, in which case web_verify
// calls fail with CodeInternal.
func NewDispatcher(idx *knowledge.Index, c *corpus.Corpus, v verify.Verifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		index:    idx,
		corpus:   c,
		verifier: v,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call runs one tool call. It never returns a Go error: every failure is
// reported in the envelope.
func (d *Dispatcher) Call(ctx context.Context, call Call) Envelope {
	name, ok := ParseName(string(call.Tool))
	if !ok {
		return d.failure(&Error{
			Code:    CodeInvalidCall,
			Message: "tool must be one of: local_context, web_verify, open_app, list_projects",
		})
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		result any
		err    error
	)
	switch name {
	case LocalContext:
		result, err = d.localContext(call.Input)
	case WebVerify:
		result, err = d.webVerify(ctx, call.Input)
	case OpenApp:
		result, err = openApp(call.Input)
	case ListProjects:
		result = d.listProjects()
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return d.failure(err)
	}
	return Envelope{OK: true, Tool: name, Result: result}
}

func (d *Dispatcher) failure(err error) Envelope {
	code, msg := CodeInternal, "Unexpected tool execution error"
	var te *Error
	switch {
	case errors.As(err, &te):
		code, msg = te.Code, te.Message
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code, msg = CodeTimeout, "Tool call timed out"
	case errors.Is(err, verify.ErrUpstream):
		code, msg = CodeUpstream, "Search provider request failed"
	}
	return Envelope{
		OK:        false,
		Code:      code,
		Message:   msg,
		Error:     msg,
		Timestamp: d.now().UTC().Format(time.RFC3339Nano),
	}
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (d *Dispatcher) localContext(input map[string]any) (ContextResult, error) {
	query := stringInput(input, "query")
	if len([]rune(query)) < minQueryChars {
		return ContextResult{}, invalidInput("local_context requires input.query (min 2 chars)")
	}
	limit := limitInput(input, "limit", DefaultContextLimit, MaxContextLimit)

	hits := retrieval.Search(d.index, query, limit)
	hits = retrieval.Expand(d.index, hits, retrieval.Options{Limit: limit})

	out := ContextResult{Query: query, Hits: make([]ContextHit, 0, len(hits))}
	for _, h := range hits {
		out.Hits = append(out.Hits, ContextHit{
			ID:      h.ID,
			Source:  string(h.Source),
			Title:   h.Title,
			Snippet: h.Body,
			URL:     h.URL,
			Score:   h.Score,
		})
	}
	return out, nil
}

func (d *Dispatcher) webVerify(ctx context.Context, input map[string]any) (VerifyResult, error) {
	query := stringInput(input, "query")
	if len([]rune(query)) < minQueryChars {
		return VerifyResult{}, invalidInput("web_verify requires input.query (min 2 chars)")
	}
	if d.verifier == nil {
		return VerifyResult{}, errors.New("tools: web verification is not configured")
	}
	res, err := d.verifier.Verify(ctx, query)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("tools: web_verify: %w", err)
	}
	res.Query = query
	return res, nil
}

func openApp(input map[string]any) (AppResult, error) {
	target := strings.ToLower(stringInput(input, "target"))
	if target == "" {
		return AppResult{}, invalidInput("open_app requires input.target")
	}
	href, ok := corpus.ResolveApp(target)
	if !ok {
		return AppResult{}, invalidInput("Unknown app target %q", target)
	}
	return AppResult{Target: target, Href: href}, nil
}

func (d *Dispatcher) listProjects() ProjectsResult {
	out := ProjectsResult{Projects: []ProjectSummary{}}
	if d.corpus == nil {
		return out
	}
	for _, p := range d.corpus.Projects {
		out.Projects = append(out.Projects, ProjectSummary{
			ID:       p.ID,
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Summary:  p.Summary,
			Link:     p.Links.Primary(),
		})
	}
	out.Count = len(out.Projects)
	return out
}

// ─── Input helpers ───────────────────────────────────────────────────────────

func stringInput(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return strings.TrimSpace(s)
}

// limitInput reads a numeric input, floors it and clamps it to 1..hi. Missing
// or non-numeric values yield def.
func limitInput(input map[string]any, key string, def, hi int) int {
	var f float64
	switch v := input[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(max(1, min(float64(hi), math.Floor(f))))
}
