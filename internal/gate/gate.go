// Package gate implements the request gate (C5): it classifies a JSON-RPC method and
// checks it against the lifecycle manager's current state, producing a structured
// {code,message,data} triple the dispatcher can turn directly into a JSON-RPC error
// envelope, without ever throwing past the core routing function.
// file: internal/gate/gate.go
package gate

import (
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/mcperror"
)

// ValidationError is the non-throwing {code,message,data} triple returned by
// GetValidationError. A nil *ValidationError means the method may proceed.
type ValidationError struct {
	Code    int
	Message string
	Data    interface{}
}

// violationData is the data payload attached to a LifecycleViolation error, echoing the
// offending operation and the state it was rejected in.
type violationData struct {
	CurrentState string `json:"currentState"`
	Operation    string `json:"operation"`
}

// Gate checks incoming methods against a LifecycleManager's current state.
type Gate struct {
	lifecycle *lifecycle.Manager
}

// New builds a Gate backed by mgr.
func New(mgr *lifecycle.Manager) *Gate {
	return &Gate{lifecycle: mgr}
}

// GetValidationError returns the structured gating error for method given the gate's
// current lifecycle state, or nil if the method may proceed. This is the non-throwing
// form the dispatcher's core routing function consults on every request; Manager's own
// ValidateOperation is the throwing form used by embedders that want a Go error instead.
func (g *Gate) GetValidationError(method string) *ValidationError {
	switch lifecycle.ClassifyMethod(method) {
	case lifecycle.CategoryAlwaysAllowed:
		return nil

	case lifecycle.CategoryInitialization:
		if method == "initialize" {
			if g.lifecycle.IsInitialized() {
				return &ValidationError{
					Code:    mcperror.CodeInvalidRequest,
					Message: "server already initialized",
				}
			}
			return nil
		}
		// notifications/initialized: only valid while Initializing, per the resolved
		// "trigger transition" reading of the open question — receiving it is what
		// drives Initializing→Ready, so it cannot also require Ready to already hold.
		if g.lifecycle.CurrentState() != lifecycle.StateInitializing {
			return &ValidationError{
				Code:    mcperror.CodeLifecycleViolation,
				Message: "notifications/initialized not valid in current lifecycle state",
				Data: violationData{
					CurrentState: string(g.lifecycle.CurrentState()),
					Operation:    method,
				},
			}
		}
		return nil

	default: // Operational, including unknown methods.
		if !g.lifecycle.IsInitialized() {
			if !g.lifecycle.HasBeenInitialized() {
				return &ValidationError{
					Code:    mcperror.CodeNotInitialized,
					Message: "server not initialized",
				}
			}
			return &ValidationError{
				Code:    mcperror.CodePostShutdown,
				Message: "server has been shut down",
			}
		}
		if !g.lifecycle.IsReady() {
			return &ValidationError{
				Code:    mcperror.CodeLifecycleViolation,
				Message: "operation not valid in current lifecycle state",
				Data: violationData{
					CurrentState: string(g.lifecycle.CurrentState()),
					Operation:    method,
				},
			}
		}
		return nil
	}
}
