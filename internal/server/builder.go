// Package server implements the application-level builder: a mutable configuration
// record that accumulates primitive registrations, middleware, and transports, and whose
// Listen call constructs an immutable Server owning the final registries, lifecycle
// manager, and transport orchestrator. The builder stays mutable until Listen, after
// which the running Server is handed out and not mutated further by the builder.
// file: internal/server/builder.go
package server

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/config"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/dispatch"
	"github.com/mcpkit/server/internal/gate"
	"github.com/mcpkit/server/internal/handshake"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/metrics"
	"github.com/mcpkit/server/internal/middleware"
	"github.com/mcpkit/server/internal/registry"
	"github.com/mcpkit/server/internal/transport"
)

// Builder accumulates primitive registrations, middleware, and transports before Listen
// freezes them into a running Server. A zero-value Builder is not usable; build one with
// NewBuilder.
type Builder struct {
	logger      logging.Logger
	cfg         *config.Settings
	caps        *capability.Registry
	prompts     *registry.PromptRegistry
	tools       *registry.ToolRegistry
	resources   *registry.ResourceRegistry
	middlewares []corectx.Middleware
	transports  []transport.DispatchTransport
	metrics     *metrics.Metrics
}

// NewBuilder creates a Builder with empty registries, the default static capabilities,
// and configuration loaded from the environment per internal/config.
func NewBuilder() *Builder {
	logger := logging.GetLogger("mcpkit")
	return &Builder{
		logger:    logger,
		cfg:       config.Load(),
		caps:      capability.NewRegistry(),
		prompts:   registry.NewPromptRegistry(logger),
		tools:     registry.NewToolRegistry(logger),
		resources: registry.NewResourceRegistry(logger),
		metrics:   metrics.New(),
	}
}

// WithLogger replaces the builder's logger. The collaborators Listen constructs use it;
// the prompt, tool, and resource registries created by NewBuilder keep the logger they
// were built with.
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithConfig overrides the configuration loaded from the environment.
func (b *Builder) WithConfig(cfg *config.Settings) *Builder {
	if cfg != nil {
		b.cfg = cfg
	}
	return b
}

// RegisterPrompt adds a prompt definition, rejecting a duplicate name.
func (b *Builder) RegisterPrompt(def registry.PromptDefinition) error {
	return b.prompts.Register(def)
}

// RegisterTool adds a tool definition, rejecting a duplicate name.
func (b *Builder) RegisterTool(def registry.ToolDefinition) error {
	return b.tools.Register(def)
}

// RegisterResource adds a resource definition, rejecting a duplicate URI pattern.
func (b *Builder) RegisterResource(def registry.ResourceDefinition) error {
	return b.resources.Register(def)
}

// Use appends mw to the middleware chain, between the reference MetricsCollector and
// ErrorMapper layers (see Listen). Registration order among user middleware is preserved.
func (b *Builder) Use(mw corectx.Middleware) *Builder {
	b.middlewares = append(b.middlewares, mw)
	return b
}

// RegisterTransport appends t to the set of transports Listen will start. Registering at
// least one transport here suppresses the default stdio transport entirely, following an
// explicit-configuration-wins convention; use Config.DisableDefaultTransport only to
// suppress the default without supplying a replacement.
func (b *Builder) RegisterTransport(t transport.DispatchTransport) *Builder {
	b.transports = append(b.transports, t)
	return b
}

// EnablePrompts, EnableTools, EnableResources, EnableCompletion, and EnableLogging
// passthrough to the capability registry, letting an application force a capability key
// present even before any primitive of that kind is registered.
func (b *Builder) EnablePrompts(streaming bool) *Builder {
	b.caps.EnablePrompts(streaming)
	return b
}

func (b *Builder) EnableTools() *Builder {
	b.caps.EnableTools()
	return b
}

func (b *Builder) EnableResources(subscribe, listChanged bool) *Builder {
	b.caps.EnableResources(subscribe, listChanged)
	return b
}

func (b *Builder) EnableCompletion() *Builder {
	b.caps.EnableCompletion()
	return b
}

func (b *Builder) AddExperimentalCapability(name string, cfg map[string]interface{}) *Builder {
	b.caps.AddExperimentalCapability(name, cfg)
	return b
}

func (b *Builder) DisableCapability(key string) *Builder {
	b.caps.DisableCapability(key)
	return b
}

// Listen freezes the accumulated configuration into a running Server: it wires the
// capability registry's dynamic counts provider, builds the lifecycle manager, gate,
// handshake handlers, and dispatcher around the default middleware stack plus any
// middleware registered with Use, then starts every registered transport (or, absent any
// explicit registration, the default stdio transport unless Config.DisableDefaultTransport
// is set). The returned Server is independent of the Builder; further calls on the
// Builder do not affect it.
func (b *Builder) Listen(ctx context.Context) (*Server, error) {
	b.caps.SetCountsProvider(func() capability.PrimitiveCounts {
		return capability.PrimitiveCounts{
			Prompts:   b.prompts.Count(),
			Tools:     b.tools.Count(),
			Resources: b.resources.Count(),
		}
	})

	lifecycleMgr := lifecycle.NewManager(b.caps, b.logger)
	g := gate.New(lifecycleMgr)
	hs := handshake.New(lifecycleMgr, b.logger)

	chain := make([]corectx.Middleware, 0, len(b.middlewares)+3)
	chain = append(chain, middleware.RequestLogging(b.logger))
	chain = append(chain, middleware.MetricsCollector(b.metrics))
	chain = append(chain, b.middlewares...)
	chain = append(chain, middleware.ErrorMapper())

	d := dispatch.New(dispatch.Options{
		Gate:       g,
		Handshake:  hs,
		Prompts:    b.prompts,
		Tools:      b.tools,
		Resources:  b.resources,
		Middleware: chain,
		Metrics:    b.metrics,
		Logger:     b.logger,
	})

	orch := transport.NewOrchestrator(b.logger)
	for _, t := range b.transports {
		orch.Register(t)
	}
	if len(b.transports) == 0 && !b.cfg.DisableDefaultTransport {
		for _, tc := range b.cfg.Transports {
			switch tc.Kind {
			case "stdio":
				orch.Register(transport.NewStdioTransport(b.logger))
			default:
				b.logger.Warn("unrecognized transport kind in config, skipping", "kind", tc.Kind)
			}
		}
	}

	if err := orch.StartAll(d.Dispatch()); err != nil {
		return nil, errors.Wrap(err, "server: starting transports")
	}
	b.metrics.SetActiveTransports(orch.Count())

	_ = ctx // reserved: a future transport (e.g. HTTP) may need ctx for graceful startup.

	return &Server{
		lifecycle:    lifecycleMgr,
		caps:         b.caps,
		prompts:      b.prompts,
		tools:        b.tools,
		resources:    b.resources,
		orchestrator: orch,
		metrics:      b.metrics,
		logger:       b.logger,
	}, nil
}
