package hook

import "fmt"

// ExecutionError is returned when a hook expression fails to parse, fails
// to evaluate, or produces a result of the wrong shape.
type ExecutionError struct {
	// Hook is the kind of hook that failed.
	Hook Kind
	// File is the template-relative path declaring the hook.
	File string
	// Message describes the failure.
	Message string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s hook in %s: %s: %v", e.Hook, e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s hook in %s: %s", e.Hook, e.File, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func newExecutionError(kind Kind, file, message string, cause error) *ExecutionError {
	return &ExecutionError{
		Hook:    kind,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}
