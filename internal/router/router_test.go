package router

import (
	"testing"
)

func TestRoute_Scenarios(t *testing.T) {
	r := New()
	cases := []struct {
		input   string
		command string
		conf    float64
	}{
		{"can you open the network app", "open network", 0.88},
		{"find empowerment research", "search empowerment research", 0.90},
		{"what do you know about intent modeling", "context intent modeling", 0.90},
		{"What can you do?", "help", 0.98},
		{"who are you", "whoami", 0.94},
		{"what are you working on", "now", 0.93},
		{"which data sources do you use", "sources", 0.92},
		{"show network stats", "network", 0.90},
		{"take me to the CV", "open resume", 0.90},
		{"tell me about the resume", "resume", 0.85},
		{"your GitHub please", "links", 0.84},
		{"what have you built", "projects", 0.88},
		{"project ai-news-hub", "project ai-news-hub", 0.95},
		{"look up memory", "search memory", 0.90},
		{"fact check go was released in 2009", "verify go was released in 2009", 0.86},
		{"available tools", "tools", 0.82},
	}
	for _, tc := range cases {
		got := r.Route(tc.input)
		if got == nil {
			t.Errorf("Route(%q) = nil, want %q", tc.input, tc.command)
			continue
		}
		if got.Command != tc.command {
			t.Errorf("Route(%q).Command = %q, want %q", tc.input, got.Command, tc.command)
		}
		if got.Confidence != tc.conf {
			t.Errorf("Route(%q).Confidence = %v, want %v", tc.input, got.Confidence, tc.conf)
		}
		if got.Reason == "" || got.Rule == "" {
			t.Errorf("Route(%q) missing reason or rule: %+v", tc.input, got)
		}
	}
}

func TestRoute_NoMatch(t *testing.T) {
	r := New()
	for _, input := range []string{"", "   ", "?!", "tell me a joke about compilers", "project   "} {
		if got := r.Route(input); got != nil {
			t.Errorf("Route(%q) = %+v, want nil", input, got)
		}
	}
}

// ─── Ordering ────────────────────────────────────────────────────────────────

func TestRoute_EarlierRulesPreempt(t *testing.T) {
	r := New()
	cases := []struct{ input, command string }{
		// "help" is checked before navigation.
		{"open help", "help"},
		// identity before links.
		{"show your profile on github", "whoami"},
		// resume before generic open targets.
		{"open resume", "open resume"},
		// project listing before the project prefix.
		{"project list", "projects"},
		// "context " wins over "context on ".
		{"context on memory", "context on memory"},
	}
	for _, tc := range cases {
		got := r.Route(tc.input)
		if got == nil || got.Command != tc.command {
			t.Errorf("Route(%q) = %+v, want %q", tc.input, got, tc.command)
		}
	}
}

func TestDefaultRules_Order(t *testing.T) {
	want := []string{
		"help", "identity", "focus", "sources", "network", "resume-open", "resume",
		"links", "projects", "project", "open", "search", "context", "verify", "tools",
	}
	rules := New().Rules()
	if len(rules) != len(want) {
		t.Fatalf("rules = %d, want %d", len(rules), len(want))
	}
	for i, rule := range rules {
		if rule.Name != want[i] {
			t.Errorf("rule %d = %q, want %q", i, rule.Name, want[i])
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			t.Errorf("rule %q confidence %v out of range", rule.Name, rule.Confidence)
		}
	}
}

func TestNewWithRules(t *testing.T) {
	r := NewWithRules([]Rule{
		{Name: "low", Match: phrases("help", "maybe"), Confidence: 0.5, Reason: "weak"},
	})
	got := r.Route("maybe help")
	if got == nil || got.Accepted() {
		t.Errorf("low-confidence route = %+v, want present but not accepted", got)
	}
	var none *Routed
	if none.Accepted() {
		t.Error("nil route accepted")
	}
	if !New().Route("help").Accepted() {
		t.Error("help route not accepted")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Open   THE Network!! ": "open the network",
		"ai-news-hub?":            "ai-news-hub",
		"a_b,c":                   "a_b c",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
