package command

import (
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/tools"
)

// ActionKind tags the side effect a Response asks its caller to perform.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNavigate
	ActionExternal
	ActionMailto
	ActionTel
	ActionClear
	ActionSetMode
	ActionVerify
	ActionListTools
	ActionToolCall
	ActionResetCounters
)

var actionNames = [...]string{
	ActionNone:          "none",
	ActionNavigate:      "navigate",
	ActionExternal:      "external",
	ActionMailto:        "mailto",
	ActionTel:           "tel",
	ActionClear:         "clear",
	ActionSetMode:       "set-mode",
	ActionVerify:        "verify",
	ActionListTools:     "list-tools",
	ActionToolCall:      "tool-call",
	ActionResetCounters: "reset-counters",
}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[k]
}

// Action is a tagged variant. Only the fields of its Kind are set:
// Href for navigate/external/mailto/tel, Mode for set-mode, Query for
// verify, Tool and Input for tool-call.
type Action struct {
	Kind  ActionKind     `json:"kind"`
	Href  string         `json:"href,omitempty"`
	Mode  session.Mode   `json:"mode,omitempty"`
	Query string         `json:"query,omitempty"`
	Tool  tools.Name     `json:"tool,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

func None() Action { return Action{Kind: ActionNone} }
func Navigate(href string) Action { return Action{Kind: ActionNavigate, Href: href} }
func External(href string) Action { return Action{Kind: ActionExternal, Href: href} }
func Mailto(href string) Action { return Action{Kind: ActionMailto, Href: href} }
func Tel(href string) Action { return Action{Kind: ActionTel, Href: href} }
func Clear() Action { return Action{Kind: ActionClear} }
func SetMode(m session.Mode) Action { return Action{Kind: ActionSetMode, Mode: m} }
func Verify(query string) Action { return Action{Kind: ActionVerify, Query: query} }
func ListTools() Action { return Action{Kind: ActionListTools} }
func ResetCounters() Action { return Action{Kind: ActionResetCounters} }
func ToolCall(name tools.Name, input map[string]any) Action {
	return Action{Kind: ActionToolCall, Tool: name, Input: input}
}

// Response is the outcome of one interpreted line.
type Response struct {
	Lines  []string `json:"lines"`
	Action Action   `json:"action"`
}

func reply(action Action, lines ...string) Response {
	if lines == nil {
		lines = []string{}
	}
	return Response{Lines: lines, Action: action}
}
