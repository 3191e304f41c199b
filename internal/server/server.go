// file: internal/server/server.go
package server

import (
	"context"

	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/fsm"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/metrics"
	"github.com/mcpkit/server/internal/registry"
	"github.com/mcpkit/server/internal/transport"
)

// Server is the immutable result of Builder.Listen: the final registries, lifecycle
// manager, and transport orchestrator a running process owns for its whole lifetime.
// Nothing on Server mutates the registries post-startup; any such mutation after Listen
// must be externally synchronized by the embedder.
type Server struct {
	lifecycle    *lifecycle.Manager
	caps         *capability.Registry
	prompts      *registry.PromptRegistry
	tools        *registry.ToolRegistry
	resources    *registry.ResourceRegistry
	orchestrator *transport.Orchestrator
	metrics      *metrics.Metrics
	logger       logging.Logger
}

// State returns the current lifecycle state.
func (s *Server) State() fsm.State {
	return s.lifecycle.CurrentState()
}

// Metrics returns a point-in-time snapshot of the server's request/error/transport counters.
func (s *Server) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot(string(s.lifecycle.CurrentState()))
}

// Prompts, Tools, and Resources expose the live registries for embedders that want to
// register additional primitives before the first request arrives, or that intentionally
// accept the external-synchronization responsibility for any post-startup mutation.
func (s *Server) Prompts() *registry.PromptRegistry     { return s.prompts }
func (s *Server) Tools() *registry.ToolRegistry         { return s.tools }
func (s *Server) Resources() *registry.ResourceRegistry { return s.resources }

// Shutdown runs the lifecycle shutdown sequence: it transitions ShuttingDown, stops every
// registered transport, then transitions back to Idle. When the lifecycle is already Idle
// it makes no transition and only stops the transports. Idempotent, like
// lifecycle.Manager.Shutdown itself.
func (s *Server) Shutdown(ctx context.Context, reason string) error {
	stopTransports := func(context.Context) error {
		s.orchestrator.StopAll()
		s.metrics.SetActiveTransports(0)
		return nil
	}
	if s.lifecycle.CurrentState() == lifecycle.StateIdle {
		return stopTransports(ctx)
	}
	return s.lifecycle.Shutdown(ctx, reason, stopTransports)
}
