// file: internal/registry/tools.go
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/pkg/util/validation"
)

// ToolHandler executes a tool call and returns an arbitrary structured result.
type ToolHandler func(ctx context.Context, args map[string]interface{}, rc *corectx.RequestContext) (interface{}, error)

// ToolDefinition describes one registered tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []Argument
	Tags        []string
	Scope       string
	Scopes      []string
	Dangerous   bool
	Validate    Validator
	Hooks       Hooks
	Handler     ToolHandler
}

// ToolRegistry owns a unique-by-name set of ToolDefinitions.
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]*ToolDefinition
	logger logging.Logger
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry(logger logging.Logger) *ToolRegistry {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &ToolRegistry{
		tools:  make(map[string]*ToolDefinition),
		logger: logger.WithField("component", "registry.tools"),
	}
}

// Register adds def, rejecting a duplicate name.
func (r *ToolRegistry) Register(def ToolDefinition) error {
	if !validation.ValidatePrimitiveName(def.Name) {
		return errors.Newf("tool name '%s' is not a valid lowercase identifier", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return errors.Newf("tool '%s' is already registered", def.Name)
	}
	r.tools[def.Name] = &def
	return nil
}

// Unregister removes a tool by name.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Clear removes every registered tool.
func (r *ToolRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]*ToolDefinition)
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// List returns descriptors for every registered tool matching filter.
func (r *ToolRegistry) List(filter ListFilter) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Descriptor
	for _, t := range r.tools {
		d := Descriptor{Name: t.Name, Description: t.Description, Tags: t.Tags, Dangerous: t.Dangerous}
		if matches(d, filter) {
			out = append(out, d)
		}
	}
	return out
}

// authorize enforces the scope/scopes/dangerous rules from the common dispatch contract.
func authorize(def *ToolDefinition, rc *corectx.RequestContext) error {
	var permissions []string
	var callerScope string
	if rc != nil && rc.User != nil {
		permissions = rc.User.Permissions
	}
	if rc != nil && rc.State != nil {
		if s, ok := rc.State["scope"].(string); ok {
			callerScope = s
		}
	}

	if def.Scope != "" && callerScope != def.Scope {
		return mcperror.NewAuthorizationError(
			fmt.Sprintf("tool '%s' requires scope '%s'", def.Name, def.Scope),
			map[string]interface{}{"tool": def.Name, "requiredScope": def.Scope},
		)
	}
	if len(def.Scopes) > 0 {
		if !intersects(def.Scopes, permissions) {
			return mcperror.NewAuthorizationError(
				fmt.Sprintf("tool '%s' requires one of scopes [%s]", def.Name, strings.Join(def.Scopes, ", ")),
				map[string]interface{}{"tool": def.Name, "requiredScopes": def.Scopes},
			)
		}
	}
	if def.Dangerous {
		if !contains(permissions, "dangerous-tools") {
			return mcperror.NewAuthorizationError(
				fmt.Sprintf("tool '%s' is dangerous and requires the 'dangerous-tools' permission", def.Name),
				map[string]interface{}{"tool": def.Name},
			)
		}
	}
	return nil
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Call dispatches to the named tool's handler with args, running validation,
// authorization, and hooks per the common registry contract.
func (r *ToolRegistry) Call(ctx context.Context, name string, args map[string]interface{}, rc *corectx.RequestContext) (interface{}, error) {
	r.mu.RLock()
	def, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Newf("tool '%s' not found", name)
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	result := runValidation(ctx, def.Validate, def.Parameters, args, "parameter")
	if !result.Valid {
		return nil, errors.Newf("%s", result.Errors[0])
	}

	if err := authorize(def, rc); err != nil {
		return nil, err
	}

	if rc != nil {
		rc.Registry = &corectx.RegistryContext{Kind: "tool"}
		rc.Execution = &corectx.ExecutionContext{ExecutionID: newExecutionID("tool", name), Metadata: map[string]interface{}{}}
	}

	if def.Hooks.BeforeExecution != nil {
		def.Hooks.BeforeExecution(ctx, args, rc)
	}

	toolResult, err := def.Handler(ctx, args, rc)
	if err != nil {
		if def.Hooks.OnError != nil {
			def.Hooks.OnError(ctx, err, rc)
		}
		return nil, err
	}

	if def.Hooks.AfterExecution != nil {
		def.Hooks.AfterExecution(ctx, toolResult, rc)
	}
	return toolResult, nil
}
