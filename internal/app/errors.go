package app

import "fmt"

// AppErrorType represents the type of application error.
type AppErrorType int

const (
	// RootConfigFailed indicates the run directive file could not be read.
	RootConfigFailed AppErrorType = iota
	// WorkingCopyFailed indicates the working copy could not be created.
	WorkingCopyFailed
	// TransformFailed indicates a lifecycle hook or the walk failed.
	TransformFailed
	// CopyFailed indicates the destination copy could not run.
	CopyFailed
	// FinalizeFailed indicates the finalize hook failed.
	FinalizeFailed
)

// String returns the string representation of the error type.
func (t AppErrorType) String() string {
	switch t {
	case RootConfigFailed:
		return "RootConfigFailed"
	case WorkingCopyFailed:
		return "WorkingCopyFailed"
	case TransformFailed:
		return "TransformFailed"
	case CopyFailed:
		return "CopyFailed"
	case FinalizeFailed:
		return "FinalizeFailed"
	default:
		return "Unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}
