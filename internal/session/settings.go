// Package session holds the per-terminal state of the query pipeline:
// user settings, escalation counters and conversation history, plus an
// optional SQLite store that persists them across runs.
package session

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// SettingsKey is the storage key of the settings record.
const SettingsKey = "dg_labs_terminal_settings_v1"

// Limits shared by the terminal and the context assembler.
const (
	MaxQueryChars     = 900
	DefaultTimeoutMS  = 15000
	MinTimeoutMS      = 3000
	MaxTimeoutMS      = 60000
	DefaultSessionCap = 24
	MinSessionCap     = 1
	MaxSessionCap     = 100
	DefaultVerifyCap  = 12
)

// Mode selects how verbose escalated answers should be.
type Mode string

const (
	ModeConcise   Mode = "concise"
	ModeExplainer Mode = "explainer"
	ModeResearch  Mode = "research"
)

// Modes lists the accepted modes.
var Modes = []Mode{ModeConcise, ModeExplainer, ModeResearch}

// ParseMode resolves a case-insensitive mode name.
func ParseMode(name string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case ModeConcise, ModeExplainer, ModeResearch:
		return m, true
	}
	return "", false
}

// ─── Settings ────────────────────────────────────────────────────────────────

// Settings is the user-adjustable terminal configuration.
type Settings struct {
	Mode        Mode `json:"brainMode"`
	LLMFallback bool `json:"llmFallbackForUnknown"`
	RouterDebug bool `json:"routerDebug"`
	ShowSources bool `json:"showLlmSources"`
	TimeoutMS   int  `json:"llmTimeoutMs"`
	SessionCap  int  `json:"llmSessionCap"`
}

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{
		Mode:        ModeConcise,
		LLMFallback: true,
		RouterDebug: true,
		ShowSources: true,
		TimeoutMS:   DefaultTimeoutMS,
		SessionCap:  DefaultSessionCap,
	}
}

// Sanitize returns s with an unknown mode replaced by the default and the
// numeric fields clamped to their ranges.
func (s Settings) Sanitize() Settings {
	m, ok := ParseMode(string(s.Mode))
	if !ok {
		m = ModeConcise
	}
	s.Mode = m
	s.TimeoutMS = clamp(s.TimeoutMS, MinTimeoutMS, MaxTimeoutMS)
	s.SessionCap = clamp(s.SessionCap, MinSessionCap, MaxSessionCap)
	return s
}

// Timeout returns the escalation timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Serialize encodes s as the stored JSON record.
func (s Settings) Serialize() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// Summary renders s as a single status line.
func (s Settings) Summary() string {
	return strings.Join([]string{
		"mode=" + string(s.Mode),
		"fallback=" + onOff(s.LLMFallback),
		"router-debug=" + onOff(s.RouterDebug),
		"llm-sources=" + onOff(s.ShowSources),
		fmt.Sprintf("timeout=%ds", int(math.Round(float64(s.TimeoutMS)/1000))),
		fmt.Sprintf("session-cap=%d", s.SessionCap),
		fmt.Sprintf("query-max=%d", MaxQueryChars),
	}, " | ")
}

// Parse decodes a stored settings record. Empty or corrupt input yields
// the defaults; a well-formed object has each field repaired on its own,
// so one bad value never discards the rest.
func Parse(raw string) Settings {
	s := Defaults()
	if strings.TrimSpace(raw) == "" {
		return s
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return s
	}

	if v, ok := fields["brainMode"].(string); ok {
		if m, ok := ParseMode(v); ok {
			s.Mode = m
		}
	}
	if v, ok := fields["llmFallbackForUnknown"].(bool); ok {
		s.LLMFallback = v
	}
	if v, ok := fields["routerDebug"].(bool); ok {
		s.RouterDebug = v
	}
	if v, ok := fields["showLlmSources"].(bool); ok {
		s.ShowSources = v
	}
	if v, ok := fields["llmTimeoutMs"].(float64); ok && !math.IsNaN(v) {
		s.TimeoutMS = clampFloat(v, MinTimeoutMS, MaxTimeoutMS)
	}
	if v, ok := fields["llmSessionCap"].(float64); ok && !math.IsNaN(v) {
		s.SessionCap = clampFloat(v, MinSessionCap, MaxSessionCap)
	}
	return s.Sanitize()
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// clampFloat clamps before converting, so out-of-range values never reach
// the int conversion.
func clampFloat(v float64, lo, hi int) int {
	return int(math.Round(min(max(v, float64(lo)), float64(hi))))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
