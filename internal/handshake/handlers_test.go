// file: internal/handshake/handlers_test.go
package handshake

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlers(t *testing.T) (*Handlers, *lifecycle.Manager, *capability.Registry) {
	t.Helper()
	caps := capability.NewRegistry()
	mgr := lifecycle.NewManager(caps, nil)
	return New(mgr, nil), mgr, caps
}

func TestHandleInitialize_Success(t *testing.T) {
	h, _, caps := newHandlers(t)
	caps.EnableTools()

	id := json.RawMessage(`1`)
	params, _ := json.Marshal(mcptypes.InitializeParams{
		ProtocolVersion: mcptypes.ProtocolVersion20250618,
		Capabilities:    mcptypes.ClientCapabilities{},
		ClientInfo:      mcptypes.Implementation{Name: "test-client", Version: "0.0.1"},
	})

	resp := h.HandleInitialize(context.Background(), id, params)
	require.Nil(t, resp.Error)

	var result mcptypes.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, mcptypes.ProtocolVersion20250618, result.ProtocolVersion)
	assert.Equal(t, mcptypes.ServerName, result.ServerInfo.Name)
	assert.Equal(t, mcptypes.ServerVersion, result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestHandleInitialize_MissingParams(t *testing.T) {
	h, _, _ := newHandlers(t)
	resp := h.HandleInitialize(context.Background(), json.RawMessage(`1`), nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcperror.CodeInvalidParams, resp.Error.Code)
}

func TestHandleInitialize_MissingProtocolVersion(t *testing.T) {
	h, _, _ := newHandlers(t)
	resp := h.HandleInitialize(context.Background(), json.RawMessage(`1`), json.RawMessage(`{"capabilities":{}}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcperror.CodeInvalidParams, resp.Error.Code)
}

func TestHandleInitialize_UnsupportedVersion(t *testing.T) {
	h, _, _ := newHandlers(t)
	params, _ := json.Marshal(mcptypes.InitializeParams{ProtocolVersion: "1.0.0", Capabilities: mcptypes.ClientCapabilities{}})
	resp := h.HandleInitialize(context.Background(), json.RawMessage(`1`), params)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "Unsupported protocol version: 1.0.0")
}

func TestHandleInitialize_Duplicate(t *testing.T) {
	h, _, _ := newHandlers(t)
	params, _ := json.Marshal(mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618, Capabilities: mcptypes.ClientCapabilities{}})

	first := h.HandleInitialize(context.Background(), json.RawMessage(`1`), params)
	require.Nil(t, first.Error)

	second := h.HandleInitialize(context.Background(), json.RawMessage(`2`), params)
	require.NotNil(t, second.Error)
	assert.Equal(t, mcperror.CodeInvalidRequest, second.Error.Code)
	assert.Contains(t, second.Error.Message, "already initialized")
}

func TestHandleInitialized_DrivesReady(t *testing.T) {
	h, mgr, _ := newHandlers(t)
	params, _ := json.Marshal(mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618, Capabilities: mcptypes.ClientCapabilities{}})
	h.HandleInitialize(context.Background(), json.RawMessage(`1`), params)

	require.NoError(t, h.HandleInitialized(context.Background()))
	assert.True(t, mgr.IsReady())
}

func TestHandleShutdown_Idempotent(t *testing.T) {
	h, mgr, _ := newHandlers(t)
	resp := h.HandleShutdown(context.Background(), json.RawMessage(`1`), nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, lifecycle.StateIdle, mgr.CurrentState())
}
