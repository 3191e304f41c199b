// Package registry implements the primitive registries (prompts, tools, resources): storage,
// declarative/custom validation, scope-based authorization, lifecycle hooks, and dispatch.
// file: internal/registry/definitions.go
package registry

import (
	"context"

	"github.com/mcpkit/server/internal/corectx"
)

// ValidationResult is returned by a Validator.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validator is implemented by both the declarative (argument/parameter list driven) path
// and any custom validate function a definition supplies.
type Validator interface {
	Validate(ctx context.Context, args map[string]interface{}) ValidationResult
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, args map[string]interface{}) ValidationResult

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, args map[string]interface{}) ValidationResult {
	return f(ctx, args)
}

// Hooks are optional callbacks a definition may attach around its handler's execution.
// The registry calls them in-line; no reflection is used.
type Hooks struct {
	BeforeExecution func(ctx context.Context, args map[string]interface{}, rc *corectx.RequestContext)
	AfterExecution  func(ctx context.Context, result interface{}, rc *corectx.RequestContext)
	OnError         func(ctx context.Context, err error, rc *corectx.RequestContext)
}

// Argument describes one named input to a prompt or tool.
type Argument struct {
	Name     string
	Required bool
	Type     string // one of string, number, boolean, object, array; empty means unconstrained.
	Default  interface{}
	Enum     []interface{}
	Schema   []byte // optional compiled-schema name is resolved by the caller; raw bytes kept for reference.
}

// Descriptor is the lightweight, filterable view of a definition returned by list().
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Dangerous   bool     `json:"dangerous,omitempty"`
	Streaming   bool     `json:"streaming,omitempty"`
	HasSchema   bool     `json:"hasSchema,omitempty"`
}

// ListFilter narrows list() results.
type ListFilter struct {
	Tags       []string
	WithSchema *bool
	Dangerous  *bool
	Streaming  *bool
}

func matches(d Descriptor, f ListFilter) bool {
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, have := range d.Tags {
				if want == have {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.WithSchema != nil && d.HasSchema != *f.WithSchema {
		return false
	}
	if f.Dangerous != nil && d.Dangerous != *f.Dangerous {
		return false
	}
	if f.Streaming != nil && d.Streaming != *f.Streaming {
		return false
	}
	return true
}
