// Package domainerrors defines the stable error vocabulary of the bridge.
// Services fully classify provider and store failures into these codes
// before returning; nothing provider-specific escapes the core.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a domain-level failure class.
type Code string

const (
	// CodeInvalidInput covers malformed or missing fields, caught before any
	// external call is made.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvalidCredentials covers a wrong phone/password combination. By
	// design it is indistinguishable from "unknown phone".
	CodeInvalidCredentials Code = "invalid_credentials"
	// CodeAlreadyRegistered means the phone already has a profile or a
	// provider account.
	CodeAlreadyRegistered Code = "already_registered"
	// CodeProvider covers any unclassified identity-provider or store
	// failure. The wrapped cause is carried for logging only, never
	// interpreted further.
	CodeProvider Code = "provider_error"
	// CodeUnauthorized covers missing or invalid session credentials on the
	// HTTP surface.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound covers lookups of records that do not exist.
	CodeNotFound Code = "not_found"
	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is for diagnostics but callers should branch on
// the code, not the cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	return Load(err) == code
}

// Load extracts the code from err, walking the wrap chain. Unknown errors
// load as CodeInternal.
func Load(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Message returns the human-readable message of a coded error, or the plain
// Error() text for unknown errors.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
