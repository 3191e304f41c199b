// file: internal/lifecycle/classify.go
package lifecycle

import (
	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/mcperror"
)

// MethodCategory classifies a JSON-RPC method for gating purposes.
type MethodCategory int

const (
	// CategoryOperational is the default for any method not otherwise classified.
	CategoryOperational MethodCategory = iota
	CategoryAlwaysAllowed
	CategoryInitialization
)

var alwaysAllowed = map[string]struct{}{
	"ping":                       {},
	"notifications/cancelled":    {},
	"notifications/progress":    {},
}

var initializationMethods = map[string]struct{}{
	"initialize":                   {},
	"notifications/initialized":    {},
}

// ClassifyMethod returns the gating category for method.
func ClassifyMethod(method string) MethodCategory {
	if _, ok := alwaysAllowed[method]; ok {
		return CategoryAlwaysAllowed
	}
	if _, ok := initializationMethods[method]; ok {
		return CategoryInitialization
	}
	return CategoryOperational
}

// ValidateOperation applies the gating rule table for method against m's current state,
// returning nil if the operation may proceed. This is the throwing form used by callers
// (e.g. LifecycleManager's own embedders) that want a Go error rather than a structured
// {code,message,data} triple; RequestGate wraps the same table for dispatcher use.
func (m *Manager) ValidateOperation(method string) error {
	switch ClassifyMethod(method) {
	case CategoryAlwaysAllowed:
		return nil
	case CategoryInitialization:
		if method == "initialize" {
			if m.IsInitialized() {
				return errors.Mark(errors.New("server already initialized"), mcperror.ErrAlreadyInitialized)
			}
			return nil
		}
		// notifications/initialized: valid only while Initializing (its receipt is what
		// drives the Initializing→Ready transition).
		if m.CurrentState() != StateInitializing {
			return errors.Mark(
				errors.Newf("notifications/initialized not valid in state %s", m.CurrentState()),
				mcperror.ErrLifecycleViolation,
			)
		}
		return nil
	default:
		if !m.IsInitialized() {
			if !m.HasBeenInitialized() {
				return errors.Mark(errors.New("server not initialized"), mcperror.ErrNotInitialized)
			}
			return errors.Mark(errors.New("server has been shut down"), mcperror.ErrPostShutdown)
		}
		if !m.IsReady() {
			return errors.Mark(
				errors.Newf("operation '%s' not valid in current lifecycle state %s", method, m.CurrentState()),
				mcperror.ErrLifecycleViolation,
			)
		}
		return nil
	}
}
