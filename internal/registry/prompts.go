// file: internal/registry/prompts.go
package registry

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/pkg/util/validation"
)

// ResultKind distinguishes a unary handler result from a lazy, single-pass stream.
type ResultKind int

const (
	KindUnary ResultKind = iota
	KindStream
)

// PromptResult is the "response kind" variant a prompt handler returns: either a single
// string (KindUnary) or a finite, single-pass channel of chunks (KindStream). The
// dispatcher/transport decide how to deliver a stream; the registry only preserves
// laziness until something consumes the channel.
type PromptResult struct {
	Kind   ResultKind
	Text   string
	Stream <-chan string
}

// UnaryPromptResult builds a KindUnary PromptResult.
func UnaryPromptResult(text string) PromptResult {
	return PromptResult{Kind: KindUnary, Text: text}
}

// StreamPromptResult builds a KindStream PromptResult.
func StreamPromptResult(ch <-chan string) PromptResult {
	return PromptResult{Kind: KindStream, Stream: ch}
}

// PromptHandler produces a PromptResult for the given arguments.
type PromptHandler func(ctx context.Context, args map[string]interface{}, rc *corectx.RequestContext) (PromptResult, error)

// PromptDefinition describes one registered prompt template.
type PromptDefinition struct {
	Name        string
	Description string
	Arguments   []Argument
	Tags        []string
	Version     string
	Streaming   bool
	Validate    Validator
	Hooks       Hooks
	Handler     PromptHandler
}

// PromptRegistry owns a unique-by-name set of PromptDefinitions.
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]*PromptDefinition
	logger  logging.Logger
}

// NewPromptRegistry creates an empty PromptRegistry.
func NewPromptRegistry(logger logging.Logger) *PromptRegistry {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &PromptRegistry{
		prompts: make(map[string]*PromptDefinition),
		logger:  logger.WithField("component", "registry.prompts"),
	}
}

// Register adds def, rejecting a duplicate name.
func (r *PromptRegistry) Register(def PromptDefinition) error {
	if !validation.ValidatePrimitiveName(def.Name) {
		return errors.Newf("prompt name '%s' is not a valid lowercase identifier", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prompts[def.Name]; exists {
		return errors.Newf("prompt '%s' is already registered", def.Name)
	}
	r.prompts[def.Name] = &def
	return nil
}

// Unregister removes a prompt by name.
func (r *PromptRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prompts, name)
}

// Clear removes every registered prompt.
func (r *PromptRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = make(map[string]*PromptDefinition)
}

// Count returns the number of registered prompts.
func (r *PromptRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// List returns descriptors for every registered prompt matching filter.
func (r *PromptRegistry) List(filter ListFilter) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Descriptor
	for _, p := range r.prompts {
		d := Descriptor{Name: p.Name, Description: p.Description, Tags: p.Tags, Streaming: p.Streaming}
		if matches(d, filter) {
			out = append(out, d)
		}
	}
	return out
}

// Get dispatches to the named prompt's handler with args, running validation and hooks
// per the common registry contract.
func (r *PromptRegistry) Get(ctx context.Context, name string, args map[string]interface{}, rc *corectx.RequestContext) (PromptResult, error) {
	r.mu.RLock()
	def, ok := r.prompts[name]
	r.mu.RUnlock()
	if !ok {
		return PromptResult{}, errors.Newf("prompt '%s' not found", name)
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	result := runValidation(ctx, def.Validate, def.Arguments, args, "argument")
	if !result.Valid {
		return PromptResult{}, errors.Newf("%s", result.Errors[0])
	}

	if rc != nil {
		rc.Registry = &corectx.RegistryContext{Kind: "prompt"}
		rc.Execution = &corectx.ExecutionContext{ExecutionID: newExecutionID("prompt", name), Metadata: map[string]interface{}{}}
	}

	if def.Hooks.BeforeExecution != nil {
		def.Hooks.BeforeExecution(ctx, args, rc)
	}

	promptResult, err := def.Handler(ctx, args, rc)
	if err != nil {
		if def.Hooks.OnError != nil {
			def.Hooks.OnError(ctx, err, rc)
		}
		return PromptResult{}, err
	}

	if def.Hooks.AfterExecution != nil {
		def.Hooks.AfterExecution(ctx, promptResult, rc)
	}
	return promptResult, nil
}

func runValidation(ctx context.Context, v Validator, args []Argument, values map[string]interface{}, kind string) ValidationResult {
	if v != nil {
		return v.Validate(ctx, values)
	}
	return validateArguments(args, values, kind)
}
