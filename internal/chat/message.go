// Package chat calls an OpenAI-compatible chat completion service to answer
// escalated terminal queries.
package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Validate checks that msgs is non-empty and every message has a known role
// and non-blank content.
func Validate(msgs []Message) error {
	if len(msgs) == 0 {
		return &Error{Code: CodeInvalidMessages, Message: "messages array is required and must not be empty"}
	}
	for i, m := range msgs {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return &Error{Code: CodeInvalidMessages, Message: fmt.Sprintf("message %d: unknown role %q", i, m.Role)}
		}
		if strings.TrimSpace(m.Content) == "" {
			return &Error{Code: CodeInvalidMessages, Message: fmt.Sprintf("message %d: content is empty", i)}
		}
	}
	return nil
}

// SystemLength returns the total character count of the system messages.
func SystemLength(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleSystem {
			n += utf8.RuneCountInString(m.Content)
		}
	}
	return n
}
