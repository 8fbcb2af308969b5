package render

import "fmt"

// RenderErrorType represents the type of rendering error.
type RenderErrorType int

const (
	// InvalidSyntax indicates the template could not be parsed.
	InvalidSyntax RenderErrorType = iota
	// ExecutionFailed indicates the template failed while executing.
	ExecutionFailed
	// IncludeNotFound indicates an include file could not be resolved or read.
	IncludeNotFound
	// CircularInclude indicates a circular chain of includes.
	CircularInclude
	// MaxIncludeDepth indicates the maximum include depth was exceeded.
	MaxIncludeDepth
)

// RenderError is returned when a template cannot be rendered. Callers treat
// it as non-fatal and fall back to the unrendered text.
type RenderError struct {
	// Type is the error type.
	Type RenderErrorType
	// Message is the error message.
	Message string
	// File is the template name or path being rendered.
	File string
	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(typ RenderErrorType, file, message string, cause error) *RenderError {
	return &RenderError{
		Type:    typ,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}
