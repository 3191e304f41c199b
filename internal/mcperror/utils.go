// Package mcperror defines error types, codes, and utilities for the MCP protocol layer.
// file: internal/mcperror/utils.go
package mcperror

import (
	"github.com/cockroachdb/errors"
)

// IsAlreadyInitialized checks if err (or its chain) is an AlreadyInitialized lifecycle error.
func IsAlreadyInitialized(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized)
}

// IsNotInitialized checks if err (or its chain) is a NotInitialized lifecycle error.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsPostShutdown checks if err (or its chain) is a PostShutdown lifecycle error.
func IsPostShutdown(err error) bool {
	return errors.Is(err, ErrPostShutdown)
}

// GetErrorCategory extracts the category attached by ErrorWithDetails, if any.
func GetErrorCategory(err error) string {
	var de *detailedError
	if errors.As(err, &de) {
		return de.category
	}
	return ""
}

// CodeFor maps err to a JSON-RPC error code: a *ProtocolError or an ErrorWithDetails-wrapped
// error reports its own code directly, anything else defaults to CodeInternalError.
func CodeFor(err error) int {
	var pErr *ProtocolError
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	var de *detailedError
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternalError
}

// GetErrorProperties returns the key/value details attached by the closest ErrorWithDetails
// call in err's chain, or nil if none is present.
func GetErrorProperties(err error) map[string]interface{} {
	var de *detailedError
	if errors.As(err, &de) {
		return de.details
	}
	return nil
}
