// Package fsm wraps looplab/fsm down to exactly what lifecycle.Manager needs: declare
// {from, to, event} transitions (several sources may share an event, as ShuttingDown is
// reachable from both Initializing and Ready), build once, then query and drive the
// machine. It deliberately has no guard-condition or entry-action callbacks and no manual
// state override: lifecycle.Manager performs its own validation and side effects around
// each Transition call, so pushing that logic into FSM callbacks would just duplicate it.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// Transition defines a transition rule between one or more source states and a single
// destination, triggered by event.
type Transition struct {
	From  []State
	To    State
	Event Event
}

// FSM defines the interface for our finite state machine wrapper.
type FSM interface {
	// AddTransition stores a transition definition. Call Build() after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build finalizes the FSM configuration and creates the underlying machine. Must be called after AddTransition(s).
	Build() error
	// CurrentState returns the current state. Requires Build() to have been called successfully.
	CurrentState() State
	// CanTransition checks if the event is defined for the current state. Requires Build().
	CanTransition(event Event) bool
	// Transition attempts to trigger a state transition. Requires Build().
	Transition(ctx context.Context, event Event, data interface{}) error
}

// loopFSM implements the FSM interface using looplab/fsm.
type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM // Underlying instance, nil until Build() is called.
	buildErr     error     // Stores error from Build() or from a bad AddTransition call.
	mu           sync.RWMutex
}

// NewFSM creates a new FSM builder instance with the specified initial state and logger.
// Call AddTransition() to define transitions, then call Build() to finalize.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm_wrapper"),
		transitions:  make([]Transition, 0),
	}
}

// AddTransition stores a transition definition to be used during Build().
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm != nil {
		l.logger.Error("Cannot AddTransition after Build() has been called.")
		if l.buildErr == nil {
			l.buildErr = errors.New("cannot AddTransition after Build")
		}
		return l
	}
	if len(t.From) == 0 {
		l.logger.Error("Transition definition missing 'From' states.", "event", t.Event, "to", t.To)
		if l.buildErr == nil {
			l.buildErr = errors.New("transition definition missing 'From' states")
		}
		return l
	}
	l.transitions = append(l.transitions, t)
	l.logger.Debug("Stored transition definition.", "event", t.Event, "from", t.From, "to", t.To)
	return l
}

// Build finalizes the FSM configuration and creates the underlying looplab/fsm instance.
// Calling it again after a successful build is a no-op returning the original result.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil {
		return l.buildErr
	}
	if l.buildErr != nil {
		l.logger.Error("Attempted to Build() FSM with configuration errors.", "error", l.buildErr)
		return l.buildErr
	}

	l.logger.Info("Building FSM instance...", "initialState", l.initialState, "transition_count", len(l.transitions))

	// looplab/fsm wants one EventDesc per unique event name, with every source state for
	// that event merged into its Src slice.
	eventDescs := make(map[string]lfsm.EventDesc)
	for _, t := range l.transitions {
		eventName := string(t.Event)
		toStateStr := string(t.To)
		fromStatesStr := make([]string, len(t.From))
		for i, s := range t.From {
			fromStatesStr[i] = string(s)
		}

		desc, exists := eventDescs[eventName]
		if !exists {
			desc = lfsm.EventDesc{Name: eventName, Dst: toStateStr}
		} else if desc.Dst != toStateStr {
			err := errors.Newf("conflicting destinations ('%s' and '%s') for the same event ('%s')", desc.Dst, toStateStr, eventName)
			l.logger.Error("Invalid FSM configuration.", "error", err)
			l.buildErr = err
			return l.buildErr
		}
		desc.Src = append(desc.Src, fromStatesStr...)
		eventDescs[eventName] = desc
	}

	finalEvents := make([]lfsm.EventDesc, 0, len(eventDescs))
	for _, desc := range eventDescs {
		uniqueSrc := make(map[string]struct{}, len(desc.Src))
		dedupedSrc := make([]string, 0, len(desc.Src))
		for _, s := range desc.Src {
			if _, seen := uniqueSrc[s]; !seen {
				uniqueSrc[s] = struct{}{}
				dedupedSrc = append(dedupedSrc, s)
			}
		}
		desc.Src = dedupedSrc
		finalEvents = append(finalEvents, desc)
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), finalEvents, lfsm.Callbacks{})
	l.logger.Info("FSM instance built successfully.")
	return nil
}

// CurrentState returns the current state of the FSM. Requires Build().
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		l.logger.Error("CurrentState() called before Build() or after build error.")
		return ""
	}
	return State(l.fsm.Current())
}

// CanTransition checks if the given event can trigger a transition from the current state. Requires Build().
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		l.logger.Error("CanTransition() called before Build() or after build error.")
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition triggers a state transition based on event. Requires Build(). data, if
// non-nil, is passed through as the underlying event's first Arg.
func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	l.mu.RLock()
	if l.fsm == nil {
		l.mu.RUnlock()
		l.logger.Error("Transition() called before Build() or after build error.")
		return l.buildErr
	}
	fsmInstance := l.fsm
	l.mu.RUnlock()

	l.logger.Debug("Attempting transition.", "event", event, "from_state", l.CurrentState())

	args := []interface{}{}
	if data != nil {
		args = append(args, data)
	}

	if err := fsmInstance.Event(ctx, string(event), args...); err != nil {
		l.logger.Warn("Transition failed.", "event", event, "from_state", l.CurrentState(), "error", err)
		return errors.Wrapf(err, "failed to transition on event '%s' from state '%s'", event, l.CurrentState())
	}

	l.logger.Debug("Transition successful.", "event", event, "new_state", l.CurrentState())
	return nil
}
