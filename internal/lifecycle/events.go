// file: internal/lifecycle/events.go
package lifecycle

import (
	"time"

	"github.com/mcpkit/server/internal/fsm"
)

// EventKind identifies which lifecycle event fired.
type EventKind string

const (
	EventKindStateChanged           EventKind = "StateChanged"
	EventKindInitializationStarted  EventKind = "InitializationStarted"
	EventKindInitializationCompleted EventKind = "InitializationCompleted"
	EventKindInitializationFailed   EventKind = "InitializationFailed"
	EventKindReady                  EventKind = "Ready"
	EventKindShutdownStarted        EventKind = "ShutdownStarted"
	EventKindShutdownCompleted      EventKind = "ShutdownCompleted"
)

// Event is the payload delivered to Observers. Fields not relevant to Kind are zero.
type Event struct {
	Kind   EventKind
	Prev   fsm.State
	Curr   fsm.State
	Reason string
	Err    error
	Time   time.Time
}
