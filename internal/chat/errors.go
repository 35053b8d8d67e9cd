package chat

import (
	"errors"
	"fmt"
)

// Code classifies a failed completion.
type Code string

const (
	CodeConfig          Code = "CONFIG_ERROR"
	CodeInvalidMessages Code = "INVALID_MESSAGES"
	CodeInvalidResponse Code = "INVALID_RESPONSE"
	CodeService         Code = "AI_SERVICE_ERROR"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a classified completion failure.
type Error struct {
	Code    Code
	Message string
	// Status is the upstream HTTP status, when there was one.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chat: %s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("chat: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the classification of err, or CodeInternal for errors
// that did not come from this package.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternal
}
