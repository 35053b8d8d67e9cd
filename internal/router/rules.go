package router

import "strings"

// openTargets are the app names navigation phrases may mention, in match
// order.
var openTargets = []string{"projects", "notes", "resume", "news", "network", "desktop", "terminal"}

var (
	navigationVerbs = []string{"open", "go to", "take me to", "show"}
	resumeVerbs     = []string{"open", "go to", "show page", "take me to"}
	searchPrefixes  = []string{"search ", "find ", "look up ", "lookup ", "find me "}
	contextPrefixes = []string{"context ", "context on ", "what do we know about ", "what do you know about "}
	verifyPrefixes  = []string{"fact check ", "verify that ", "is it true that "}
)

// DefaultRules returns the routing table. Order matters: earlier, more
// specific rules pre-empt later, broader ones.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "help",
			Match:      phrases("help", "help", "commands", "what can you do"),
			Confidence: 0.98,
			Reason:     "help intent phrase",
		},
		{
			Name:       "identity",
			Match:      phrases("whoami", "who am i", "who are you", "profile", "about dg"),
			Confidence: 0.94,
			Reason:     "identity intent phrase",
		},
		{
			Name:       "focus",
			Match:      phrases("now", "what are you working on", "current focus", "what now", "doing now"),
			Confidence: 0.93,
			Reason:     "current focus intent phrase",
		},
		{
			Name:       "sources",
			Match:      phrases("sources", "sources", "data sources", "context sources"),
			Confidence: 0.92,
			Reason:     "source intent phrase",
		},
		{
			Name:       "network",
			Match:      phrases("network", "network summary", "summarize network", "show network stats"),
			Confidence: 0.90,
			Reason:     "network summary phrase",
		},
		{
			Name:       "resume-open",
			Match:      both(anyOf("resume", "cv"), anyOf(resumeVerbs...), "open resume"),
			Confidence: 0.90,
			Reason:     "resume navigation phrase",
		},
		{
			Name:       "resume",
			Match:      phrases("resume", "resume", "cv"),
			Confidence: 0.85,
			Reason:     "resume info phrase",
		},
		{
			Name:       "links",
			Match:      phrases("links", "linkedin", "github", "email", "phone", "contact links"),
			Confidence: 0.84,
			Reason:     "links phrase",
		},
		{
			Name: "projects",
			Match: phrases("projects",
				"what have you built", "what did you build", "your projects",
				"list projects", "show projects", "projects list", "project list"),
			Confidence: 0.88,
			Reason:     "project listing phrase",
		},
		{
			Name:       "project",
			Match:      prefixed("project", "project "),
			Confidence: 0.95,
			Reason:     "project id phrase",
		},
		{
			Name:       "open",
			Match:      openTarget,
			Confidence: 0.88,
			Reason:     "navigation phrase",
		},
		{
			Name:       "search",
			Match:      prefixed("search", searchPrefixes...),
			Confidence: 0.90,
			Reason:     "search prefix phrase",
		},
		{
			Name:       "context",
			Match:      prefixed("context", contextPrefixes...),
			Confidence: 0.90,
			Reason:     "context lookup phrase",
		},
		{
			Name:       "verify",
			Match:      prefixed("verify", verifyPrefixes...),
			Confidence: 0.86,
			Reason:     "verification prefix phrase",
		},
		{
			Name:       "tools",
			Match:      phrases("tools", "list tools", "show tools", "what tools", "available tools"),
			Confidence: 0.82,
			Reason:     "tool listing phrase",
		},
	}
}

// ─── Matchers ────────────────────────────────────────────────────────────────

func containsAny(input string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(input, p) {
			return true
		}
	}
	return false
}

func anyOf(patterns ...string) func(string) bool {
	return func(input string) bool { return containsAny(input, patterns) }
}

// phrases matches when input contains any pattern and rewrites to cmd.
func phrases(cmd string, patterns ...string) func(string) (string, bool) {
	return func(input string) (string, bool) {
		return cmd, containsAny(input, patterns)
	}
}

// both matches when a and b both hold.
func both(a, b func(string) bool, cmd string) func(string) (string, bool) {
	return func(input string) (string, bool) {
		return cmd, a(input) && b(input)
	}
}

// prefixed matches the first prefix input starts with and appends the
// non-empty remainder to cmd.
func prefixed(cmd string, prefixes ...string) func(string) (string, bool) {
	return func(input string) (string, bool) {
		for _, p := range prefixes {
			if !strings.HasPrefix(input, p) {
				continue
			}
			if rest := strings.TrimSpace(input[len(p):]); rest != "" {
				return cmd + " " + rest, true
			}
		}
		return "", false
	}
}

func openTarget(input string) (string, bool) {
	if !containsAny(input, navigationVerbs) {
		return "", false
	}
	for _, t := range openTargets {
		if strings.Contains(input, t) {
			return "open " + t, true
		}
	}
	return "", false
}
