// file: internal/registry/resources.go
package registry

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/pkg/util/validation"
)

// ResourceContent is a provider's response to get(uri).
type ResourceContent struct {
	URI      string
	MimeType string
	Data     interface{}
}

// ResourceList is a provider's response to list(cursor).
type ResourceList struct {
	Resources  []Descriptor
	NextCursor string
}

// ResourceProvider backs one registered URI pattern.
type ResourceProvider interface {
	Get(ctx context.Context, uri string) (ResourceContent, error)
	List(ctx context.Context, cursor string) (ResourceList, error)
}

// ResourceDefinition describes one registered URI pattern and its backing provider.
type ResourceDefinition struct {
	URIPattern  string
	Name        string
	Description string
	MimeType    string
	Tags        []string
	Hooks       Hooks
	Provider    ResourceProvider

	// ValidateURI, if set, is consulted on every Get against this definition's matched
	// uriPattern: a false return rejects the read before the provider is invoked. Leave
	// nil to accept whatever the provider itself is willing to resolve. pkg/util/url's
	// ValidateResourceURI is a ready-made scheme://path[/{param}] checker.
	ValidateURI func(uri string) bool
}

// ResourceRegistry owns a unique-by-uriPattern set of ResourceDefinitions and resolves
// reads by longest-prefix match against the request URI.
type ResourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]*ResourceDefinition
	logger    logging.Logger
}

// NewResourceRegistry creates an empty ResourceRegistry.
func NewResourceRegistry(logger logging.Logger) *ResourceRegistry {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &ResourceRegistry{
		resources: make(map[string]*ResourceDefinition),
		logger:    logger.WithField("component", "registry.resources"),
	}
}

// Register adds def, rejecting a duplicate uriPattern.
func (r *ResourceRegistry) Register(def ResourceDefinition) error {
	if def.MimeType != "" && !validation.ValidateMimeType(def.MimeType) {
		return errors.Newf("resource '%s' has malformed mimeType '%s'", def.URIPattern, def.MimeType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[def.URIPattern]; exists {
		return errors.Newf("resource '%s' is already registered", def.URIPattern)
	}
	r.resources[def.URIPattern] = &def
	return nil
}

// Unregister removes a resource definition by its uriPattern.
func (r *ResourceRegistry) Unregister(uriPattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resources, uriPattern)
}

// Clear removes every registered resource definition.
func (r *ResourceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources = make(map[string]*ResourceDefinition)
}

// Count returns the number of registered resource definitions.
func (r *ResourceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// findProvider resolves uri to its definition: exact match first, else the registered
// uriPattern that is a prefix of uri with the greatest length. Patterns are expected to
// be unique, so ties should not occur in practice.
func (r *ResourceRegistry) findProvider(uri string) *ResourceDefinition {
	if def, ok := r.resources[uri]; ok {
		return def
	}
	var best *ResourceDefinition
	bestLen := -1
	for pattern, def := range r.resources {
		if strings.HasPrefix(uri, pattern) && len(pattern) > bestLen {
			best = def
			bestLen = len(pattern)
		}
	}
	return best
}

// Get reads uri from whichever registered provider owns the longest matching prefix.
func (r *ResourceRegistry) Get(ctx context.Context, uri string, rc *corectx.RequestContext) (ResourceContent, error) {
	r.mu.RLock()
	def := r.findProvider(uri)
	r.mu.RUnlock()
	if def == nil {
		return ResourceContent{}, errors.Newf("No provider found for resource '%s'", uri)
	}
	if def.ValidateURI != nil && !def.ValidateURI(uri) {
		return ResourceContent{}, errors.Newf("resource URI '%s' failed format validation", uri)
	}

	if rc != nil {
		rc.Registry = &corectx.RegistryContext{Kind: "resource"}
		rc.Execution = &corectx.ExecutionContext{ExecutionID: newExecutionID("resource", def.URIPattern), Metadata: map[string]interface{}{}}
	}

	if def.Hooks.BeforeExecution != nil {
		def.Hooks.BeforeExecution(ctx, map[string]interface{}{"uri": uri}, rc)
	}

	content, err := def.Provider.Get(ctx, uri)
	if err != nil {
		if def.Hooks.OnError != nil {
			def.Hooks.OnError(ctx, err, rc)
		}
		return ResourceContent{}, err
	}

	if def.Hooks.AfterExecution != nil {
		def.Hooks.AfterExecution(ctx, content, rc)
	}
	return content, nil
}

// List concatenates list() results from every registered provider. A per-provider error
// is logged and skipped rather than failing the whole call.
func (r *ResourceRegistry) List(ctx context.Context, cursor string) ResourceList {
	r.mu.RLock()
	defs := make([]*ResourceDefinition, 0, len(r.resources))
	for _, def := range r.resources {
		defs = append(defs, def)
	}
	r.mu.RUnlock()

	var all []Descriptor
	for _, def := range defs {
		page, err := def.Provider.List(ctx, cursor)
		if err != nil {
			r.logger.Warn("resource provider list failed", "uriPattern", def.URIPattern, "error", err)
			continue
		}
		all = append(all, page.Resources...)
	}
	return ResourceList{Resources: all}
}

// InMemoryResourceProvider is the reference ResourceProvider: a fixed in-memory set of
// resources with fixed page size 50 and a decimal-string cursor equal to the next start
// index; the final page omits NextCursor.
type InMemoryResourceProvider struct {
	mu          sync.RWMutex
	items       []ResourceContent
	descriptors []Descriptor
}

const inMemoryPageSize = 50

// NewInMemoryResourceProvider builds a provider over the given static items.
func NewInMemoryResourceProvider(items []ResourceContent, descriptors []Descriptor) *InMemoryResourceProvider {
	return &InMemoryResourceProvider{items: items, descriptors: descriptors}
}

// Get returns the item whose URI exactly matches uri.
func (p *InMemoryResourceProvider) Get(_ context.Context, uri string) (ResourceContent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, item := range p.items {
		if item.URI == uri {
			return item, nil
		}
	}
	return ResourceContent{}, errors.Newf("resource '%s' not found", uri)
}

// List returns up to inMemoryPageSize descriptors starting at cursor.
func (p *InMemoryResourceProvider) List(_ context.Context, cursor string) (ResourceList, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return ResourceList{}, errors.Newf("invalid cursor '%s'", cursor)
		}
		start = parsed
	}
	if start > len(p.descriptors) {
		start = len(p.descriptors)
	}

	end := start + inMemoryPageSize
	if end > len(p.descriptors) {
		end = len(p.descriptors)
	}

	result := ResourceList{Resources: append([]Descriptor{}, p.descriptors[start:end]...)}
	if end < len(p.descriptors) {
		result.NextCursor = strconv.Itoa(end)
	}
	return result, nil
}
