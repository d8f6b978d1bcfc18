package library

import (
	"errors"
	"fmt"
)

// Domain errors carry a machine-readable code so callers can branch on
// kind with errors.Is without matching message strings.

// Re-export standard library helpers so callers branch on error kind
// without a second import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Code classifies a domain error.
type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeValidation     Code = "VALIDATION"
	CodeInvalidState   Code = "INVALID_STATE"
	CodeInvariant      Code = "INVARIANT"
	CodeConflict       Code = "CONFLICT"
	CodeAuthentication Code = "AUTHENTICATION"
)

// Error is a domain error with a code and message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInvalidState   = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrInvariant      = &Error{Code: CodeInvariant, Message: "invariant violation"}
	ErrConflict       = &Error{Code: CodeConflict, Message: "conflict"}
	ErrAuthentication = &Error{Code: CodeAuthentication, Message: "authentication failed"}
)

// NotFound creates a not-found error.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

// NotFoundf creates a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidState creates an invalid-state error.
func InvalidState(msg string) *Error { return &Error{Code: CodeInvalidState, Message: msg} }

// InvalidStatef creates an invalid-state error with a formatted message.
func InvalidStatef(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Invariant creates an invariant-violation error. These indicate a
// defect (a race, or a caller bypassing the engine), not bad input.
func Invariant(msg string) *Error { return &Error{Code: CodeInvariant, Message: msg} }

// Invariantf creates an invariant-violation error with a formatted message.
func Invariantf(format string, args ...any) *Error {
	return &Error{Code: CodeInvariant, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

// Authentication creates an authentication error. It is deliberately a
// distinct kind from NotFound so an unknown email and a wrong password
// are indistinguishable to the caller.
func Authentication(msg string) *Error { return &Error{Code: CodeAuthentication, Message: msg} }
