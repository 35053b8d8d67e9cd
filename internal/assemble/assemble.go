// Package assemble builds the size-bounded message sequence sent to the chat
// service for an escalated query.
package assemble

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/labos/internal/chat"
	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/retrieval"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/verify"
)

var (
	// ErrPreambleOverBudget reports a base preamble larger than the system
	// budget. It is a configuration error.
	ErrPreambleOverBudget = errors.New("assemble: base preamble exceeds system budget")
	// ErrEmptyQuery reports a query that is empty after normalization.
	ErrEmptyQuery = errors.New("assemble: empty query")
)

// Budgets bounds each part of the assembled context, in characters.
type Budgets struct {
	System         int
	History        int
	GroundingItems int
	Snippet        int
	VerifySources  int
	VerifySnippet  int
	Turn           int
	Query          int
	Highlight      int
}

// DefaultBudgets returns the production budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		System:         6000,
		History:        4000,
		GroundingItems: 6,
		Snippet:        280,
		VerifySources:  5,
		VerifySnippet:  200,
		Turn:           600,
		Query:          session.MaxQueryChars,
		Highlight:      160,
	}
}

// VerifyContext is the most recent web verification, carried into later
// escalations.
type VerifyContext struct {
	Query   string
	Summary string
	Sources []verify.Source
}

// Request is the input to Build.
type Request struct {
	Query   string
	History []session.Turn
	Hits    []retrieval.Hit
	Verify  *VerifyContext
	Mode    session.Mode
}

// Trace reports what Build kept and dropped.
type Trace struct {
	Class             knowledge.Class
	PreambleChars     int
	SystemChars       int
	SystemLimit       int
	GroundingAccepted int
	GroundingDropped  int
	VerifyAccepted    int
	VerifyDropped     int
	HistoryAccepted   int
	HistoryDropped    int
	HistoryChars      int
	QueryTruncated    bool
}

// String renders the trace as one debug line.
func (t Trace) String() string {
	return fmt.Sprintf("context: class=%s system=%d/%d grounding=%d (dropped %d) verify=%d (dropped %d) history=%d turns/%d chars (dropped %d)",
		t.Class, t.SystemChars, t.SystemLimit,
		t.GroundingAccepted, t.GroundingDropped,
		t.VerifyAccepted, t.VerifyDropped,
		t.HistoryAccepted, t.HistoryChars, t.HistoryDropped)
}

// Result is the assembled message sequence: system, history, user.
type Result struct {
	Messages []chat.Message
	Trace    Trace
}

// Builder assembles contexts from a fixed corpus. The zero Budgets value is
// replaced by DefaultBudgets.
type Builder struct {
	Budgets Budgets
	Corpus  *corpus.Corpus
}

// NewBuilder creates a Builder with DefaultBudgets.
func NewBuilder(c *corpus.Corpus) *Builder {
	return &Builder{Budgets: DefaultBudgets(), Corpus: c}
}

var askPrefix = regexp.MustCompile(`(?i)^ask\s+`)

// NormalizeQuery strips a leading "ask" and hard-caps the query at limit
// characters.
func NormalizeQuery(raw string, limit int) string {
	q, _ := normalizeQuery(raw, limit)
	return q
}

func normalizeQuery(raw string, limit int) (q string, truncated bool) {
	q = strings.TrimSpace(askPrefix.ReplaceAllString(strings.TrimSpace(raw), ""))
	if strings.EqualFold(q, "ask") {
		return "", false
	}
	r := []rune(q)
	if len(r) > limit {
		return string(r[:limit]), true
	}
	return q, false
}

// Build assembles req. It is deterministic: equal requests yield equal
// results.
func (b *Builder) Build(req Request) (Result, error) {
	budgets := b.Budgets
	if budgets == (Budgets{}) {
		budgets = DefaultBudgets()
	}

	query, truncated := normalizeQuery(req.Query, budgets.Query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	trace := Trace{
		Class:          knowledge.Classify(query),
		SystemLimit:    budgets.System,
		QueryTruncated: truncated,
	}

	preamble := b.preamble(req.Mode, trace.Class, budgets)
	system := Budget{Limit: budgets.System}
	if !system.Accept(preamble) {
		return Result{}, fmt.Errorf("%w: %d > %d", ErrPreambleOverBudget, system.Cost(preamble), budgets.System)
	}
	trace.PreambleChars = system.Used
	segments := []string{preamble}

	grounding, acc, drop := block(&system, "\nGrounded context snippets (local index):", groundingLines(req.Hits, budgets))
	segments = append(segments, grounding...)
	trace.GroundingAccepted, trace.GroundingDropped = acc, drop

	if req.Verify != nil {
		header := fmt.Sprintf("\nWeb verification for %q: %s", req.Verify.Query, req.Verify.Summary)
		lines, acc, drop := block(&system, header, verifyLines(req.Verify, budgets))
		segments = append(segments, lines...)
		trace.VerifyAccepted, trace.VerifyDropped = acc, drop
	}
	trace.SystemChars = system.Used

	history, hb, dropped := selectHistory(req.History, budgets)
	trace.HistoryAccepted, trace.HistoryDropped, trace.HistoryChars = len(history), dropped, hb

	msgs := make([]chat.Message, 0, len(history)+2)
	msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Content: strings.Join(segments, "\n")})
	msgs = append(msgs, history...)
	msgs = append(msgs, chat.Message{Role: chat.RoleUser, Content: query})
	return Result{Messages: msgs, Trace: trace}, nil
}

// block spends header and then each candidate line against b. Lines that do
// not fit are dropped; later, shorter lines may still fit. With no accepted
// lines the header is not spent either. Candidates are numbered as they are
// accepted.
func block(b *Budget, header string, candidates []func(n int) string) (lines []string, accepted, dropped int) {
	if len(candidates) == 0 {
		return nil, 0, 0
	}
	trial := *b
	if !trial.Accept(header) {
		return nil, 0, len(candidates)
	}
	lines = []string{header}
	for _, render := range candidates {
		line := render(accepted + 1)
		if trial.Accept(line) {
			lines = append(lines, line)
			accepted++
			continue
		}
		dropped++
	}
	if accepted == 0 {
		return nil, 0, dropped
	}
	*b = trial
	return lines, accepted, dropped
}

func groundingLines(hits []retrieval.Hit, budgets Budgets) []func(int) string {
	ranked := slices.Clone(hits)
	slices.SortStableFunc(ranked, func(a, b retrieval.Hit) int { return cmp.Compare(b.Score, a.Score) })
	ranked = ranked[:min(len(ranked), max(budgets.GroundingItems, 0))]

	out := make([]func(int) string, 0, len(ranked))
	for _, h := range ranked {
		snippet := Truncate(h.Body, budgets.Snippet)
		source := ""
		if h.URL != "" {
			source = fmt.Sprintf(" (source: %s)", h.URL)
		}
		out = append(out, func(n int) string {
			return fmt.Sprintf("%d. [%s] %s :: %s%s", n, h.Source, h.Title, snippet, source)
		})
	}
	return out
}

func verifyLines(v *VerifyContext, budgets Budgets) []func(int) string {
	sources := v.Sources[:min(len(v.Sources), max(budgets.VerifySources, 0))]
	out := make([]func(int) string, 0, len(sources))
	for _, s := range sources {
		snippet := Truncate(s.Snippet, budgets.VerifySnippet)
		out = append(out, func(n int) string {
			return fmt.Sprintf("%d. %s :: %s (source: %s)", n, s.Title, snippet, s.URL)
		})
	}
	return out
}

// selectHistory walks turns from newest to oldest, truncating each to the
// per-turn cap, until the history budget is exhausted. The accepted turns
// are returned in chronological order.
func selectHistory(turns []session.Turn, budgets Budgets) (msgs []chat.Message, chars, dropped int) {
	b := Budget{Limit: budgets.History}
	picked := make([]chat.Message, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		content := Truncate(strings.TrimSpace(turns[i].Content), budgets.Turn)
		if content == "" {
			dropped++
			continue
		}
		if !b.Accept(content) {
			dropped += i + 1
			break
		}
		chars += utf8.RuneCountInString(content)
		picked = append(picked, chat.Message{Role: chat.Role(turns[i].Role), Content: content})
	}
	slices.Reverse(picked)
	return picked, chars, dropped
}
