// Package mcperror defines error types, codes, and utilities for the MCP protocol layer and
// its JSON-RPC transport. It gives the dispatcher structured context (a JSON-RPC error code,
// a category, and arbitrary details) without requiring every caller to hand-build error envelopes.
// file: internal/mcperror/types.go
package mcperror

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Categories for grouping similar errors.
const (
	CategoryLifecycle  = "lifecycle"  // Lifecycle state-machine violations.
	CategoryValidation = "validation" // Registry/handshake input validation failures.
	CategoryAuth       = "auth"       // Tool scope/permission failures.
	CategoryRPC        = "rpc"        // JSON-RPC envelope and routing errors.
	CategoryTransport   = "transport" // Transport framing/start-up errors.
)

// Standard JSON-RPC 2.0 error codes, plus the MCP lifecycle codes from spec section 6.
const (
	CodeParseError     = -32700 // Invalid JSON received.
	CodeInvalidRequest = -32600 // Invalid request object (includes AlreadyInitialized).
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeLifecycleViolation = -32000 // Initialized but not Ready.
	CodeNotInitialized     = -32002 // Never initialized.
	CodePostShutdown       = -32003 // Initialized once, now shut down.
)

// Base sentinel errors used with errors.Is/errors.Mark throughout the application.
var (
	ErrAlreadyInitialized    = errors.New("server already initialized")
	ErrNotInitialized        = errors.New("server not initialized")
	ErrPostShutdown          = errors.New("server has been shut down")
	ErrLifecycleViolation    = errors.New("operation not valid in current lifecycle state")
	ErrInvalidStateTransition = errors.New("invalid lifecycle state transition")
)

// ProtocolError is the canonical carrier for errors that the dispatcher converts directly
// into a JSON-RPC error response: it already knows its wire code, message, and optional data.
type ProtocolError struct {
	Code    int
	Message string
	Data    interface{}
	cause   error
}

// NewProtocolError builds a ProtocolError with the given JSON-RPC code, message, and optional data.
func NewProtocolError(code int, message string, data interface{}) *ProtocolError {
	return &ProtocolError{Code: code, Message: message, Data: data}
}

// Error implements the standard error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// Unwrap exposes any wrapped cause for errors.Is/errors.As traversal.
func (e *ProtocolError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error for diagnostic chains without changing the wire message.
func (e *ProtocolError) WithCause(cause error) *ProtocolError {
	e.cause = cause
	return e
}

// detailedError carries structured category/code/detail metadata alongside a wrapped cause.
// It also attaches a human-readable detail string via cockroachdb/errors so the metadata
// still shows up in %+v output and Sentry-style reporting, without that string being the
// only way to recover the structured fields.
type detailedError struct {
	cause    error
	category string
	code     int
	details  map[string]interface{}
}

func (e *detailedError) Error() string { return e.cause.Error() }

func (e *detailedError) Unwrap() error { return e.cause }

// ErrorWithDetails annotates err with a category, a JSON-RPC code, and arbitrary key/value
// details. The original error chain survives via Unwrap, and GetErrorCategory/CodeFor/
// GetErrorProperties recover the structured fields with errors.As.
func ErrorWithDetails(err error, category string, code int, details map[string]interface{}) error {
	wrapped := errors.WithDetailf(err, "category=%s code=%d", category, code)
	return &detailedError{cause: wrapped, category: category, code: code, details: details}
}

// NewValidationError creates a registry input-validation error (missing/invalid argument or parameter).
func NewValidationError(message string, properties map[string]interface{}) error {
	err := errors.Newf("%s", message)
	return ErrorWithDetails(err, CategoryValidation, CodeInvalidParams, properties)
}

// NewAuthorizationError creates a tool authorization failure (scope/scopes/dangerous mismatch).
func NewAuthorizationError(message string, properties map[string]interface{}) error {
	err := errors.Newf("%s", message)
	return ErrorWithDetails(err, CategoryAuth, CodeLifecycleViolation, properties)
}

// NewMethodNotFoundError creates a method-not-found error for an unroutable JSON-RPC method.
func NewMethodNotFoundError(method string, properties map[string]interface{}) error {
	err := errors.Newf("method '%s' not found", method)
	details := map[string]interface{}{"method": method}
	for k, v := range properties {
		details[k] = v
	}
	return ErrorWithDetails(err, CategoryRPC, CodeMethodNotFound, details)
}

// NewInternalError wraps cause as an internal server error, preserving the original message.
func NewInternalError(message string, cause error, properties map[string]interface{}) error {
	var err error
	if cause == nil {
		err = errors.Newf("%s", message)
	} else {
		err = errors.Wrapf(cause, "%s", message)
	}
	return ErrorWithDetails(err, CategoryRPC, CodeInternalError, properties)
}
