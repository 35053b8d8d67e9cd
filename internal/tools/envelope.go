package tools

import (
	"github.com/HendryAvila/labos/internal/verify"
)

// Code classifies a failed tool call.
type Code string

const (
	CodeInvalidCall  Code = "INVALID_TOOL_CALL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeUpstream     Code = "UPSTREAM_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Call is one tool invocation.
type Call struct {
	Tool  Name           `json:"tool"`
	Input map[string]any `json:"input,omitempty"`
}

// Envelope is the normalized outcome of a Call. Successful calls carry Tool
// and Result; failed calls carry Code, Message, Error and Timestamp.
type Envelope struct {
	OK        bool   `json:"ok"`
	Tool      Name   `json:"tool,omitempty"`
	Result    any    `json:"result,omitempty"`
	Code      Code   `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ─── Results ─────────────────────────────────────────────────────────────────

// ContextHit is one local_context hit.
type ContextHit struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
	Score   int    `json:"score"`
}

// ContextResult is the local_context result.
type ContextResult struct {
	Query string       `json:"query"`
	Hits  []ContextHit `json:"hits"`
}

// VerifyResult is the web_verify result.
type VerifyResult = verify.Result

// AppResult is the open_app result.
type AppResult struct {
	Target string `json:"target"`
	Href   string `json:"href"`
}

// ProjectSummary is one list_projects row.
type ProjectSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Summary  string `json:"summary"`
	Link     string `json:"link,omitempty"`
}

// ProjectsResult is the list_projects result.
type ProjectsResult struct {
	Count    int              `json:"count"`
	Projects []ProjectSummary `json:"projects"`
}
