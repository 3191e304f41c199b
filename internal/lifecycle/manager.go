// file: internal/lifecycle/manager.go
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/fsm"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/internal/mcptypes"
)

// Observer receives lifecycle events. Observers are pure: they must never call back into
// the Manager or attempt to influence the transition in progress.
type Observer func(Event)

// Manager drives the four-state handshake machine and stores the hasBeenInitialized flag
// that distinguishes "never initialized" (-32002) from "post-shutdown" (-32003) at the gate.
type Manager struct {
	mu                 sync.Mutex
	machine            fsm.FSM
	hasBeenInitialized bool
	caps               *capability.Registry
	observers          []Observer
	logger             logging.Logger
}

// NewManager builds a Manager starting in Idle, wired to caps for storing client
// capabilities and deriving the server capabilities returned from initialize.
func NewManager(caps *capability.Registry, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	m := &Manager{
		caps:   caps,
		logger: logger.WithField("component", "lifecycle"),
	}
	machine := fsm.NewFSM(StateIdle, logger)
	machine.
		AddTransition(fsm.Transition{From: []fsm.State{StateIdle}, To: StateInitializing, Event: EventInitialize}).
		AddTransition(fsm.Transition{From: []fsm.State{StateInitializing}, To: StateReady, Event: EventInitialized}).
		AddTransition(fsm.Transition{From: []fsm.State{StateInitializing}, To: StateIdle, Event: EventInitializeFailed}).
		AddTransition(fsm.Transition{From: []fsm.State{StateInitializing, StateReady}, To: StateShuttingDown, Event: EventShutdown}).
		AddTransition(fsm.Transition{From: []fsm.State{StateShuttingDown}, To: StateIdle, Event: EventShutdownCompleted})
	if err := machine.Build(); err != nil {
		// Transition table above is fixed and valid; a build failure here indicates a
		// programming error in this package, not a runtime condition callers can handle.
		panic(errors.Wrap(err, "lifecycle: invalid transition table"))
	}
	m.machine = machine
	return m
}

// Subscribe registers an observer for every emitted lifecycle event.
func (m *Manager) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *Manager) emit(e Event) {
	e.Time = time.Now()
	for _, o := range m.observers {
		o(e)
	}
}

// CurrentState returns the machine's current state.
func (m *Manager) CurrentState() fsm.State {
	return m.machine.CurrentState()
}

// IsInitialized reports isInitialized ≡ state ≠ Idle.
func (m *Manager) IsInitialized() bool {
	return m.CurrentState() != StateIdle
}

// IsReady reports isReady ≡ state = Ready.
func (m *Manager) IsReady() bool {
	return m.CurrentState() == StateReady
}

// HasBeenInitialized reports whether Initializing has ever been entered.
func (m *Manager) HasBeenInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasBeenInitialized
}

// CanTransitionTo reports whether the fixed transition table permits ev from the current state.
func (m *Manager) CanTransitionTo(ev fsm.Event) bool {
	return m.machine.CanTransition(ev)
}

// Initialize performs the initialize handshake step. Concurrent callers are serialized by mu;
// only the first to observe state==Idle proceeds, so later callers fail with ErrAlreadyInitialized.
func (m *Manager) Initialize(ctx context.Context, req mcptypes.InitializeParams) (mcptypes.InitializeResult, error) {
	m.mu.Lock()
	if m.CurrentState() != StateIdle {
		m.mu.Unlock()
		return mcptypes.InitializeResult{}, errors.Mark(
			errors.Newf("server already initialized (state=%s)", m.CurrentState()),
			mcperror.ErrAlreadyInitialized,
		)
	}
	if err := m.machine.Transition(ctx, EventInitialize, req); err != nil {
		m.mu.Unlock()
		return mcptypes.InitializeResult{}, errors.Wrap(err, "lifecycle: enter Initializing")
	}
	m.hasBeenInitialized = true
	m.mu.Unlock()

	m.emit(Event{Kind: EventKindInitializationStarted})

	if !mcptypes.IsSupportedProtocolVersion(req.ProtocolVersion) {
		failErr := errors.Newf("Unsupported protocol version: %s", req.ProtocolVersion)
		m.mu.Lock()
		_ = m.machine.Transition(ctx, EventInitializeFailed, failErr)
		m.mu.Unlock()
		m.emit(Event{Kind: EventKindInitializationFailed, Err: failErr})
		return mcptypes.InitializeResult{}, failErr
	}

	m.caps.ProcessClientCapabilities(req.Capabilities)

	result := mcptypes.InitializeResult{
		ProtocolVersion: req.ProtocolVersion,
		Capabilities:    m.caps.ServerCapabilities(),
		ServerInfo: mcptypes.Implementation{
			Name:    mcptypes.ServerName,
			Version: mcptypes.ServerVersion,
		},
	}

	m.emit(Event{Kind: EventKindInitializationCompleted})
	m.logger.Info("initialize completed", "protocolVersion", req.ProtocolVersion)
	return result, nil
}

// Initialized handles notifications/initialized, moving Initializing→Ready.
// Resolved open question: this notification is the trigger for the Ready transition.
func (m *Manager) Initialized(ctx context.Context) error {
	m.mu.Lock()
	if m.CurrentState() != StateInitializing {
		m.mu.Unlock()
		return errors.Mark(
			errors.Newf("notifications/initialized received in state %s", m.CurrentState()),
			mcperror.ErrLifecycleViolation,
		)
	}
	err := m.machine.Transition(ctx, EventInitialized, nil)
	m.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "lifecycle: enter Ready")
	}
	m.emit(Event{Kind: EventKindReady})
	return nil
}

// Shutdown runs the shutdown sequence. Idempotent when already Idle or ShuttingDown.
// cleanup, if non-nil, runs between ShutdownStarted and the final Idle transition; its
// error is propagated after the Idle transition is forced through regardless.
func (m *Manager) Shutdown(ctx context.Context, reason string, cleanup func(context.Context) error) error {
	m.mu.Lock()
	state := m.CurrentState()
	if state == StateIdle || state == StateShuttingDown {
		m.mu.Unlock()
		return nil
	}
	if err := m.machine.Transition(ctx, EventShutdown, reason); err != nil {
		m.mu.Unlock()
		return errors.Wrap(err, "lifecycle: enter ShuttingDown")
	}
	m.mu.Unlock()

	m.emit(Event{Kind: EventKindShutdownStarted, Reason: reason})

	var cleanupErr error
	if cleanup != nil {
		cleanupErr = cleanup(ctx)
	}

	m.mu.Lock()
	transErr := m.machine.Transition(ctx, EventShutdownCompleted, nil)
	m.mu.Unlock()

	m.emit(Event{Kind: EventKindShutdownCompleted, Reason: reason, Err: cleanupErr})

	if transErr != nil {
		return errors.Wrap(transErr, "lifecycle: enter Idle after shutdown")
	}
	return cleanupErr
}
