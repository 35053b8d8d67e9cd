package tools

import "strings"

// Name identifies one terminal tool.
type Name string

const (
	LocalContext Name = "local_context"
	WebVerify    Name = "web_verify"
	OpenApp      Name = "open_app"
	ListProjects Name = "list_projects"
)

// Names lists every tool in display order.
var Names = []Name{LocalContext, WebVerify, OpenApp, ListProjects}

// ParseName returns the tool named s, case-insensitively.
func ParseName(s string) (Name, bool) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Names {
		if n == known {
			return n, true
		}
	}
	return "", false
}

// PrimaryField is the input key that free-text tool arguments map to, or ""
// when the tool takes no input.
func (n Name) PrimaryField() string {
	switch n {
	case LocalContext, WebVerify:
		return "query"
	case OpenApp:
		return "target"
	}
	return ""
}

// Usage is the one-line argument hint for n.
func (n Name) Usage() string {
	switch n {
	case LocalContext:
		return `tool local_context <query> | {"query":"...","limit":5}`
	case WebVerify:
		return `tool web_verify <query> | {"query":"..."}`
	case OpenApp:
		return `tool open_app <target> | {"target":"network"}`
	}
	return "tool list_projects"
}
