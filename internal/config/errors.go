package config

import "fmt"

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType int

const (
	// TemplateNotFound indicates the template path does not exist.
	TemplateNotFound ConfigErrorType = iota
	// TemplateNotDirectory indicates the template path is not a directory.
	TemplateNotDirectory
	// DestinationFailed indicates the destination directory could not be prepared.
	DestinationFailed
	// OptionsInvalid indicates the render options could not be resolved.
	OptionsInvalid
)

// String returns the string representation of the error type.
func (t ConfigErrorType) String() string {
	switch t {
	case TemplateNotFound:
		return "TemplateNotFound"
	case TemplateNotDirectory:
		return "TemplateNotDirectory"
	case DestinationFailed:
		return "DestinationFailed"
	case OptionsInvalid:
		return "OptionsInvalid"
	default:
		return "Unknown"
	}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	// Type is the error type.
	Type ConfigErrorType
	// Message is the error message.
	Message string
	// File is the path the error refers to.
	File string
	// Field is the option that caused the error.
	Field string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		if e.Cause != nil {
			return fmt.Sprintf("configuration error [field: %s]: %s: %v", e.Field, e.Message, e.Cause)
		}
		return fmt.Sprintf("configuration error [field: %s]: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.File, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(typ ConfigErrorType, file, message string) *ConfigError {
	return &ConfigError{
		Type:    typ,
		File:    file,
		Message: message,
	}
}

// NewConfigErrorWithField creates a new ConfigError with a field name.
func NewConfigErrorWithField(typ ConfigErrorType, field, message string, cause error) *ConfigError {
	return &ConfigError{
		Type:    typ,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(typ ConfigErrorType, file, message string, cause error) *ConfigError {
	return &ConfigError{
		Type:    typ,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}
