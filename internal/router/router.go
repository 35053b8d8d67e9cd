// Package router rewrites natural-language terminal input into grammar
// commands using an ordered table of phrase rules.
package router

import (
	"regexp"
	"strings"
)

// Threshold is the minimum confidence at which a rewrite is accepted.
const Threshold = 0.8

// Routed is a rewrite proposed by a rule.
type Routed struct {
	Command    string  `json:"command"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	// Rule names the rule that matched.
	Rule string `json:"rule"`
}

// Accepted reports whether r clears Threshold.
func (r *Routed) Accepted() bool {
	return r != nil && r.Confidence >= Threshold
}

// Rule is one row of the routing table. Match receives normalized input and
// returns the rewritten command.
type Rule struct {
	Name       string
	Match      func(input string) (string, bool)
	Confidence float64
	Reason     string
}

// Router evaluates its rules top to bottom; the first match wins.
type Router struct {
	rules []Rule
}

// New returns a Router over the default rule table.
func New() *Router {
	return &Router{rules: DefaultRules()}
}

// NewWithRules returns a Router over rules, evaluated in order.
func NewWithRules(rules []Rule) *Router {
	return &Router{rules: rules}
}

// Rules returns the rule table in evaluation order.
func (r *Router) Rules() []Rule { return r.rules }

// Route returns the first matching rewrite of raw, or nil.
func (r *Router) Route(raw string) *Routed {
	input := Normalize(raw)
	if input == "" {
		return nil
	}
	for _, rule := range r.rules {
		cmd, ok := rule.Match(input)
		if !ok {
			continue
		}
		return &Routed{Command: cmd, Confidence: rule.Confidence, Reason: rule.Reason, Rule: rule.Name}
	}
	return nil
}

var (
	nonWord = regexp.MustCompile(`[^\w\s-]`)
	spaces  = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases raw, replaces punctuation with spaces and collapses
// whitespace.
func Normalize(raw string) string {
	s := nonWord.ReplaceAllString(strings.ToLower(raw), " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
