// file: internal/server/builder_test.go
package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mcpkit/server/internal/config"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/dispatch"
	"github.com/mcpkit/server/internal/fsm"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/mcpkit/server/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a DispatchTransport stub that keeps its Start-time dispatch.Func in a
// field for the test to call instead of reading any real I/O, so Listen can be exercised
// without stdio.
type fakeTransport struct {
	name   string
	fn     dispatch.Func
	stopped bool
}

func (f *fakeTransport) Name() string { return f.name }
func (f *fakeTransport) Start(fn dispatch.Func) error {
	f.fn = fn
	return nil
}
func (f *fakeTransport) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeTransport) send(t *testing.T, msg *jsonrpc.Message) *jsonrpc.Message {
	t.Helper()
	require.NotNil(t, f.fn, "transport was never started")
	var resp *jsonrpc.Message
	f.fn(msg, func(r *jsonrpc.Message) { resp = r }, corectx.TransportMetadata{Transport: corectx.TransportInfo{Name: f.name}})
	return resp
}

func req(id string, method string, params interface{}) *jsonrpc.Message {
	var p json.RawMessage
	if params != nil {
		p, _ = json.Marshal(params)
	}
	return &jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: json.RawMessage(id), Method: method, Params: p}
}

func TestBuilder_ListenRegistersDefaultStdioWhenNoneExplicit(t *testing.T) {
	b := NewBuilder().WithConfig(&config.Settings{Transports: []config.TransportConfig{{Kind: "stdio"}}})
	srv, err := b.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Metrics().ActiveTransports)
	require.NoError(t, srv.Shutdown(context.Background(), "test"))
}

func TestBuilder_ExplicitTransportSuppressesDefault(t *testing.T) {
	ft := &fakeTransport{name: "fake"}
	b := NewBuilder().RegisterTransport(ft)

	srv, err := b.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Metrics().ActiveTransports)

	resp := ft.send(t, req(`"a"`, "tools/list", nil))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)

	require.NoError(t, srv.Shutdown(context.Background(), "test"))
	assert.True(t, ft.stopped)
}

func TestBuilder_FullHandshakeThroughFakeTransport(t *testing.T) {
	ft := &fakeTransport{name: "fake"}
	b := NewBuilder().RegisterTransport(ft)

	require.NoError(t, b.RegisterTool(registry.ToolDefinition{
		Name: "echo",
		Handler: func(_ context.Context, args map[string]interface{}, _ *corectx.RequestContext) (interface{}, error) {
			return args, nil
		},
	}))

	srv, err := b.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fsm.State("Idle"), srv.State())

	resp := ft.send(t, req(`1`, "initialize", mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618}))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result mcptypes.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.NotNil(t, result.Capabilities.Tools)

	resp = ft.send(t, req(``, "notifications/initialized", nil))
	assert.Nil(t, resp)
	assert.Equal(t, fsm.State("Ready"), srv.State())

	resp = ft.send(t, req(`2`, "tools/call", map[string]interface{}{"name": "echo", "arguments": map[string]interface{}{"x": 1}}))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	require.NoError(t, srv.Shutdown(context.Background(), "done"))
	assert.Equal(t, fsm.State("Idle"), srv.State())
}

func TestBuilder_DuplicateToolRegistrationFails(t *testing.T) {
	b := NewBuilder()
	def := registry.ToolDefinition{Name: "dup", Handler: func(context.Context, map[string]interface{}, *corectx.RequestContext) (interface{}, error) { return nil, nil }}
	require.NoError(t, b.RegisterTool(def))
	err := b.RegisterTool(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestBuilder_DisableDefaultTransportStartsNoTransports(t *testing.T) {
	b := NewBuilder().WithConfig(&config.Settings{DisableDefaultTransport: true})
	srv, err := b.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, srv.Metrics().ActiveTransports)
}
