package config

import (
	"fmt"
	"os"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of spec validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) fail(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Validate checks a completion spec file against the schema, then compiles it
// to catch what the schema cannot express (regexps, trigger shapes, generator kinds)
func Validate(path string) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("completion spec not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read completion spec: %w", err)
	}

	result, err := ValidateWithSchema(path, content)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	spec, err := LoadSpec(path)
	if err != nil {
		result.fail("syntax", fmt.Sprintf("Failed to parse completion spec: %v", err))
		return result, nil
	}

	_, issues := spec.compile()
	for _, issue := range issues {
		result.fail(issue.Field, issue.Message)
	}
	return result, nil
}
