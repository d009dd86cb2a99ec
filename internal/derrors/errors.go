// Package derrors provides the typed errors shared by autosuggest packages.
// None of them are fatal to the scheduler: generator failures degrade to an
// empty suggestion list and are only surfaced in logs.
package derrors

import (
	"errors"
	"fmt"
	"time"
)

// Error is implemented by every autosuggest error
type Error interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all autosuggest errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first autosuggest error in err's chain, or ""
func CodeOf(err error) string {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return ""
}

// ConfigurationError represents errors in settings or completion spec files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{code: "CONFIG_ERROR", message: message, cause: cause},
		Path:      path,
	}
}

// ValidationError represents an invalid field in a completion spec
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{code: "VALIDATION_ERROR", message: message, cause: cause},
		Field:     field,
	}
}

// ExecutionError represents a script generator that failed to run or exited non-zero
type ExecutionError struct {
	baseError
	Command string
}

// NewExecutionError creates a new execution error
func NewExecutionError(command string, message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{code: "EXEC_ERROR", message: message, cause: cause},
		Command:   command,
	}
}

// TimeoutError represents a script generator killed after the configured timeout
type TimeoutError struct {
	baseError
	Command string
	Timeout time.Duration
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(command string, timeout time.Duration, cause error) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			code:    "TIMEOUT_ERROR",
			message: fmt.Sprintf("command timed out after %v", timeout),
			cause:   cause,
		},
		Command: command,
		Timeout: timeout,
	}
}

// GeneratorError represents a template or custom generator failure
type GeneratorError struct {
	baseError
	Generator string
}

// NewGeneratorError creates a new generator error
func NewGeneratorError(generator string, message string, cause error) *GeneratorError {
	return &GeneratorError{
		baseError: baseError{code: "GENERATOR_ERROR", message: message, cause: cause},
		Generator: generator,
	}
}

// TriggerError represents a trigger predicate that failed and was resolved to "trigger"
type TriggerError struct {
	baseError
	Previous string
	Current  string
}

// NewTriggerError creates a new trigger error
func NewTriggerError(previous, current string, cause error) *TriggerError {
	return &TriggerError{
		baseError: baseError{code: "TRIGGER_ERROR", message: "trigger predicate failed", cause: cause},
		Previous:  previous,
		Current:   current,
	}
}

// NotFoundError represents errors when a resource is not found
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{code: "NOT_FOUND", message: message},
		Resource:  resource,
	}
}
