package directive

import "fmt"

// SyntaxError is returned when a directive block cannot be parsed. File is
// the path relative to the original template, not the working copy.
type SyntaxError struct {
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}
