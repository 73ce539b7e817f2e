// Package errors provides structured error types for labelpress.
//
// Errors carry a machine-readable [Code] so that the CLI and the HTTP API can
// react to the failure class instead of parsing messages:
//
//   - INVALID_*: the caller supplied a malformed schema, target or input
//   - NOT_FOUND: a template or instance does not exist
//   - ENCODE_FAILED: a symbol could not be encoded and has no fallback
//   - RESOURCE_EXHAUSTED: the canvas for a render could not be allocated
//   - NETWORK_ERROR, TIMEOUT: asset fetch failures (normally degraded, not returned)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSchema, "elements must be a list, got %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidSchema) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeEncodeFailed, cause, "qr payload of %d bytes", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidTarget Code = "INVALID_TARGET"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Rendering errors
	ErrCodeEncodeFailed      Code = "ENCODE_FAILED"
	ErrCodeResourceExhausted Code = "RESOURCE_EXHAUSTED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSchema, ErrCodeInvalidTarget, ErrCodeInvalidPath:
		return true
	}
	return false
}
