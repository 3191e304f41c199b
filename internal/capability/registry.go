// Package capability implements the server/client capability negotiation used during
// the MCP handshake: a mutable static capability set merged with capabilities dynamically
// derived from whatever primitive registries are wired in.
// file: internal/capability/registry.go
package capability

import (
	"sync"

	"github.com/mcpkit/server/internal/mcptypes"
)

// PrimitiveCounts reports how many definitions each primitive registry currently holds,
// used to derive the dynamic prompts/tools/resources capability keys.
type PrimitiveCounts struct {
	Prompts   int
	Tools     int
	Resources int
}

// CountsProvider is implemented by whatever owns the primitive registries.
type CountsProvider func() PrimitiveCounts

// Registry holds static server capabilities plus an optional dynamic counts provider,
// and stores the client's declared capabilities from the handshake.
type Registry struct {
	mu       sync.RWMutex
	static   map[string]interface{}
	disabled map[string]struct{}
	counts   CountsProvider
	client   mcptypes.ClientCapabilities
}

// NewRegistry builds a Registry with the default static capabilities (experimental,
// logging both present but empty) and no dynamic counts provider wired yet.
func NewRegistry() *Registry {
	return &Registry{
		static: map[string]interface{}{
			"experimental": map[string]interface{}{},
			"logging":      map[string]interface{}{},
		},
		disabled: make(map[string]struct{}),
	}
}

// SetCountsProvider wires the function used to derive primitive-based capability keys.
func (r *Registry) SetCountsProvider(p CountsProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = p
}

// EnablePrompts sets the static prompts capability, with its streaming flag set to streaming.
func (r *Registry) EnablePrompts(streaming bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static["prompts"] = mcptypes.PromptCapabilities{Streaming: streaming}
	delete(r.disabled, "prompts")
}

// EnableTools sets the static tools capability.
func (r *Registry) EnableTools() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static["tools"] = map[string]interface{}{}
	delete(r.disabled, "tools")
}

// EnableResources sets the static resources capability.
func (r *Registry) EnableResources(subscribe, listChanged bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static["resources"] = mcptypes.ResourceCapabilities{Subscribe: subscribe, ListChanged: listChanged}
	delete(r.disabled, "resources")
}

// EnableCompletion sets the static completion capability.
func (r *Registry) EnableCompletion() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static["completion"] = map[string]interface{}{}
	delete(r.disabled, "completion")
}

// EnableLogging (re)sets the static logging capability to an empty object.
func (r *Registry) EnableLogging() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static["logging"] = map[string]interface{}{}
	delete(r.disabled, "logging")
}

// AddExperimentalCapability merges a named experimental feature flag into the static
// experimental object.
func (r *Registry) AddExperimentalCapability(name string, cfg map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, _ := r.static["experimental"].(map[string]interface{})
	if exp == nil {
		exp = map[string]interface{}{}
	}
	if cfg == nil {
		cfg = map[string]interface{}{}
	}
	exp[name] = cfg
	r.static["experimental"] = exp
}

// DisableCapability removes key from the static set. A dynamic counts provider can still
// reinstate the key on the next read if it derives a non-zero count for it.
func (r *Registry) DisableCapability(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.static, key)
	r.disabled[key] = struct{}{}
}

// ProcessClientCapabilities stores the client's declared capabilities from initialize.
func (r *Registry) ProcessClientCapabilities(cc mcptypes.ClientCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.client = cc
}

// ClientHasExperimental reports whether the stored client capabilities declared any
// experimental feature.
func (r *Registry) ClientHasExperimental() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client.HasExperimental()
}

// ClientHasSampling reports whether the stored client capabilities declared sampling.
func (r *Registry) ClientHasSampling() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client.HasSampling()
}

// ServerCapabilities computes the negotiated capability set: dynamic capabilities fill in
// keys absent from the static set; static entries always win on conflict. The merge is
// recomputed on every call so it is always consistent with live registry counts.
func (r *Registry) ServerCapabilities() mcptypes.ServerCapabilities {
	r.mu.RLock()
	static := make(map[string]interface{}, len(r.static))
	for k, v := range r.static {
		static[k] = v
	}
	counter := r.counts
	r.mu.RUnlock()

	result := mcptypes.ServerCapabilities{
		Experimental: map[string]interface{}{},
		Logging:      map[string]interface{}{},
	}
	if v, ok := static["experimental"].(map[string]interface{}); ok {
		result.Experimental = v
	}
	if v, ok := static["logging"].(map[string]interface{}); ok {
		result.Logging = v
	}
	if v, ok := static["completion"]; ok {
		if m, ok := v.(map[string]interface{}); ok {
			result.Completion = m
		}
	}
	if v, ok := static["prompts"].(mcptypes.PromptCapabilities); ok {
		p := v
		result.Prompts = &p
	}
	if v, ok := static["tools"].(map[string]interface{}); ok {
		result.Tools = v
	}
	if v, ok := static["resources"].(mcptypes.ResourceCapabilities); ok {
		r := v
		result.Resources = &r
	}

	if counter == nil {
		return result
	}
	counts := counter()
	if _, explicit := static["prompts"]; !explicit && result.Prompts == nil && counts.Prompts > 0 {
		result.Prompts = &mcptypes.PromptCapabilities{}
	}
	if _, explicit := static["tools"]; !explicit && result.Tools == nil && counts.Tools > 0 {
		result.Tools = map[string]interface{}{}
	}
	if _, explicit := static["resources"]; !explicit && result.Resources == nil && counts.Resources > 0 {
		result.Resources = &mcptypes.ResourceCapabilities{}
	}
	return result
}
