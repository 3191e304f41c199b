// Package validation provides small, dependency-free format checks for the primitive
// names and MIME types that flow through the registries in internal/registry. It has no
// knowledge of JSON Schema (internal/schema owns that); it only rejects the malformed
// strings a client or embedder should never have been able to register in the first
// place.
package validation

import "regexp"

var (
	mimeRegex = regexp.MustCompile(`^[a-z]+/[a-z0-9\-\.\+]*(;\s?[a-z0-9\-\.]+\s*=\s*[a-z0-9\-\.]+)*$`)
	nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// ValidateMimeType reports whether mimeType looks like a well-formed MIME type, with an
// optional parameter list (e.g. "text/plain; charset=utf-8").
func ValidateMimeType(mimeType string) bool {
	return mimeRegex.MatchString(mimeType)
}

// ValidatePrimitiveName reports whether name is a valid tool, prompt, or resource
// descriptor name: lowercase alphanumeric, starting with a letter, with underscores or
// hyphens as separators.
func ValidatePrimitiveName(name string) bool {
	return nameRegex.MatchString(name)
}
