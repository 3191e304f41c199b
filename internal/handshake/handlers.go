// Package handshake implements the handshake handlers (C6): building the initialize,
// notifications/initialized, and shutdown responses from the capability registry and
// lifecycle manager. It is the only place that translates between the wire envelope and
// the lifecycle manager's Go-typed methods.
// file: internal/handshake/handlers.go
package handshake

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/internal/mcptypes"
)

// Handlers builds JSON-RPC responses for the three handshake methods around a
// LifecycleManager.
type Handlers struct {
	lifecycle *lifecycle.Manager
	logger    logging.Logger
}

// New builds Handlers wired to mgr.
func New(mgr *lifecycle.Manager, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Handlers{lifecycle: mgr, logger: logger.WithField("component", "handshake")}
}

// rawParams is the loosest possible decode of an initialize request's params, used only
// to distinguish "absent" from "present but structurally invalid" before unmarshaling
// into the strongly-typed mcptypes.InitializeParams.
type rawParams struct {
	ProtocolVersion *string          `json:"protocolVersion"`
	Capabilities    *json.RawMessage `json:"capabilities"`
}

// HandleInitialize validates the envelope, invokes LifecycleManager.Initialize, and
// wraps the result (or failure) as a JSON-RPC response carrying id.
func (h *Handlers) HandleInitialize(ctx context.Context, id json.RawMessage, params json.RawMessage) *jsonrpc.Message {
	if len(params) == 0 {
		return errorResponse(id, mcperror.CodeInvalidParams, "missing params")
	}

	var raw rawParams
	if err := json.Unmarshal(params, &raw); err != nil {
		return errorResponse(id, mcperror.CodeInvalidParams, "invalid params: "+err.Error())
	}
	if raw.ProtocolVersion == nil {
		return errorResponse(id, mcperror.CodeInvalidParams, "missing protocolVersion")
	}
	if raw.Capabilities == nil {
		return errorResponse(id, mcperror.CodeInvalidParams, "missing capabilities")
	}

	var initParams mcptypes.InitializeParams
	if err := json.Unmarshal(params, &initParams); err != nil {
		return errorResponse(id, mcperror.CodeInvalidParams, "invalid params: "+err.Error())
	}

	result, err := h.lifecycle.Initialize(ctx, initParams)
	if err != nil {
		if mcperror.IsAlreadyInitialized(err) {
			return errorResponse(id, mcperror.CodeInvalidRequest, err.Error())
		}
		return errorResponse(id, mcperror.CodeInternalError, err.Error())
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, mcperror.CodeInternalError, errors.Wrap(err, "marshal initialize result").Error())
	}
	return &jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: id, Result: resultJSON}
}

// HandleInitialized drives the Initializing→Ready transition. It is a notification:
// there is no response to build, only a possible log on failure (the gate rejects a
// misplaced notifications/initialized before this is ever called).
func (h *Handlers) HandleInitialized(ctx context.Context) error {
	if err := h.lifecycle.Initialized(ctx); err != nil {
		h.logger.Warn("notifications/initialized rejected", "error", err)
		return err
	}
	return nil
}

// HandleShutdown runs the shutdown sequence and returns a success response with a null
// result, per the resolved open question that shutdown is handled like any other wire
// method in addition to being a plain Go call an embedder can make directly.
func (h *Handlers) HandleShutdown(ctx context.Context, id json.RawMessage, params json.RawMessage) *jsonrpc.Message {
	var shutdownParams mcptypes.ShutdownParams
	if len(params) > 0 {
		_ = json.Unmarshal(params, &shutdownParams)
	}

	if err := h.lifecycle.Shutdown(ctx, shutdownParams.Reason, nil); err != nil {
		return errorResponse(id, mcperror.CodeInternalError, err.Error())
	}
	return &jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: id, Result: json.RawMessage("null")}
}

func errorResponse(id json.RawMessage, code int, message string) *jsonrpc.Message {
	return &jsonrpc.Message{
		JSONRPC: jsonrpc.Version,
		ID:      id,
		Error:   &jsonrpc.Error{Code: code, Message: message},
	}
}
