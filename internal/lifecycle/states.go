// Package lifecycle implements the MCP four-state handshake machine: Idle, Initializing,
// Ready, and ShuttingDown. It wraps internal/fsm the way the connection state machine once
// wrapped looplab/fsm directly, but generalized to the framework's own state set.
// file: internal/lifecycle/states.go
package lifecycle

import "github.com/mcpkit/server/internal/fsm"

// States in the handshake machine.
const (
	StateIdle         fsm.State = "Idle"
	StateInitializing fsm.State = "Initializing"
	StateReady        fsm.State = "Ready"
	StateShuttingDown fsm.State = "ShuttingDown"
)

// Events that drive transitions between states.
const (
	EventInitialize        fsm.Event = "initialize"
	EventInitializeFailed   fsm.Event = "initializeFailed"
	EventInitialized        fsm.Event = "initialized"
	EventShutdown           fsm.Event = "shutdown"
	EventShutdownCompleted   fsm.Event = "shutdownCompleted"
)
