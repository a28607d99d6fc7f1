// Package errors provides structured error types for the PanelForge engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, HTTP API, and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map to the engine's failure surfaces:
//   - VALIDATION_*: Archive or project data failed validation
//   - ASSET_*: Asset resolution and materialization failures
//   - RENDER_*: Document rendering failures
//   - IO_*: Filesystem and container read/write failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeValidation, "manifest missing from archive %s", path)
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRender, origErr, "panel page %d", pageNo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Archive and project validation errors
	ErrCodeValidation      Code = "VALIDATION_ERROR"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidRef      Code = "INVALID_ASSET_REF"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Asset pipeline errors
	ErrCodeAssetResolution Code = "ASSET_RESOLUTION"
	ErrCodeMaterialization Code = "MATERIALIZATION_FAILED"

	// Rendering errors
	ErrCodeRender      Code = "RENDER_ERROR"
	ErrCodeFontEmbed   Code = "FONT_EMBED_FAILED"
	ErrCodeImageDecode Code = "IMAGE_DECODE_FAILED"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeAssetNotFound Code = "ASSET_NOT_FOUND"

	// Session errors
	ErrCodeBusy Code = "SESSION_BUSY"

	// Container and filesystem errors
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
