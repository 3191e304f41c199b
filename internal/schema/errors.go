// Package schema compiles and validates JSON Schema documents used to describe tool
// parameters, prompt arguments, and resource payloads.
// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode categorizes schema failures.
type ErrorCode int

const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError is a structured schema failure: compile-time or validate-time.
type ValidationError struct {
	Code         ErrorCode
	Message      string
	Cause        error
	SchemaPath   string
	InstancePath string
	Context      map[string]interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	base := fmt.Sprintf("schema error [%d] %s", e.Code, e.Message)
	if e.SchemaPath != "" {
		base += fmt.Sprintf(" (schema: %s)", e.SchemaPath)
	}
	if e.InstancePath != "" {
		base += fmt.Sprintf(" (instance: %s)", e.InstancePath)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %v", e.Cause)
	}
	return base
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key-value pair and returns e for chaining.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError builds a ValidationError, wrapping cause with a stack trace.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   wrapped,
		Context: map[string]interface{}{"timestamp": time.Now().UTC().Format(time.RFC3339Nano)},
	}
}

// convertValidationError translates a jsonschema library error into a ValidationError,
// carrying over the instance/keyword locations that pinpoint the failure.
func convertValidationError(valErr *jsonschema.ValidationError, name string) *ValidationError {
	custom := NewValidationError(ErrValidationFailed, valErr.Message, valErr)
	custom.InstancePath = valErr.InstanceLocation
	custom.SchemaPath = valErr.KeywordLocation
	custom.WithContext("schemaName", name)

	if len(valErr.Causes) > 0 {
		causes := make([]map[string]string, 0, len(valErr.Causes))
		for _, c := range valErr.Causes {
			causes = append(causes, map[string]string{
				"instanceLocation": c.InstanceLocation,
				"keywordLocation":  c.KeywordLocation,
				"message":          c.Message,
			})
		}
		custom.WithContext("causes", causes)
	}
	return custom
}
