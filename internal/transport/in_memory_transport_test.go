// file: internal/transport/in_memory_transport_test.go
package transport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/dispatch"
	"github.com/mcpkit/server/internal/gate"
	"github.com/mcpkit/server/internal/handshake"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/mcpkit/server/internal/middleware"
	"github.com/mcpkit/server/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestDispatcher wires a minimal but real Dispatcher, the same collaborators
// internal/server.Builder.Listen assembles, with one echo tool registered.
func buildTestDispatcher(t *testing.T) dispatch.Func {
	t.Helper()
	caps := capability.NewRegistry()
	mgr := lifecycle.NewManager(caps, nil)
	prompts := registry.NewPromptRegistry(nil)
	tools := registry.NewToolRegistry(nil)
	resources := registry.NewResourceRegistry(nil)

	caps.SetCountsProvider(func() capability.PrimitiveCounts {
		return capability.PrimitiveCounts{Prompts: prompts.Count(), Tools: tools.Count(), Resources: resources.Count()}
	})
	require.NoError(t, tools.Register(registry.ToolDefinition{
		Name: "echo",
		Handler: func(_ context.Context, args map[string]interface{}, _ *corectx.RequestContext) (interface{}, error) {
			return args, nil
		},
	}))

	d := dispatch.New(dispatch.Options{
		Gate:       gate.New(mgr),
		Handshake:  handshake.New(mgr, nil),
		Prompts:    prompts,
		Tools:      tools,
		Resources:  resources,
		Middleware: []corectx.Middleware{middleware.ErrorMapper()},
	})
	return d.Dispatch()
}

// TestInMemoryDispatchTransport_FullHandshakeRoundTrip drives a real Dispatcher end to
// end over a live InMemoryTransportPair: the client side writes/reads raw JSON frames
// exactly like a real transport's peer would, while the server side runs through
// InMemoryDispatchTransport into the dispatcher.
func TestInMemoryDispatchTransport_FullHandshakeRoundTrip(t *testing.T) {
	pair := NewInMemoryTransportPair()
	server := NewInMemoryDispatchTransport("in-memory", pair.ServerTransport, nil)

	require.NoError(t, server.Start(buildTestDispatcher(t)))
	defer func() { require.NoError(t, server.Stop()) }()

	ctx := context.Background()
	send := func(msg *jsonrpc.Message) {
		b, err := json.Marshal(msg)
		require.NoError(t, err)
		require.NoError(t, pair.ClientTransport.WriteMessage(ctx, b))
	}
	recv := func() *jsonrpc.Message {
		raw, err := pair.ClientTransport.ReadMessage(ctx)
		require.NoError(t, err)
		var msg jsonrpc.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return &msg
	}

	initParams, err := json.Marshal(mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)
	send(&jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: json.RawMessage(`1`), Method: "initialize", Params: initParams})

	resp := recv()
	require.Nil(t, resp.Error)
	var initResult mcptypes.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &initResult))
	assert.Equal(t, "MCP Server Framework", initResult.ServerInfo.Name)
	assert.NotNil(t, initResult.Capabilities.Tools)

	send(&jsonrpc.Message{JSONRPC: jsonrpc.Version, Method: "notifications/initialized"})

	callParams, err := json.Marshal(map[string]interface{}{"name": "echo", "arguments": map[string]interface{}{"x": 1}})
	require.NoError(t, err)
	send(&jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: json.RawMessage(`2`), Method: "tools/call", Params: callParams})

	resp = recv()
	require.Nil(t, resp.Error)
	var callResult mcptypes.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &callResult))
	assert.Contains(t, callResult.Content[0].Text, `"x":1`)
}

// TestInMemoryDispatchTransport_MalformedMessageYieldsParseError exercises the same
// parse-error path StdioTransport exercises for unparsable lines, but over the channel
// transport instead of stdin.
func TestInMemoryDispatchTransport_MalformedMessageYieldsParseError(t *testing.T) {
	pair := NewInMemoryTransportPair()
	server := NewInMemoryDispatchTransport("in-memory", pair.ServerTransport, nil)

	require.NoError(t, server.Start(buildTestDispatcher(t)))
	defer func() { require.NoError(t, server.Stop()) }()

	ctx := context.Background()
	require.NoError(t, pair.ClientTransport.WriteMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"test"`)))

	raw, err := pair.ClientTransport.ReadMessage(ctx)
	require.NoError(t, err)
	var msg jsonrpc.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.NotNil(t, msg.Error)
	assert.Equal(t, jsonrpc.CodeParseError, msg.Error.Code)
}

// TestInMemoryDispatchTransport_StopIsIdempotent mirrors StdioTransport's own
// idempotent-Stop guarantee.
func TestInMemoryDispatchTransport_StopIsIdempotent(t *testing.T) {
	pair := NewInMemoryTransportPair()
	server := NewInMemoryDispatchTransport("in-memory", pair.ServerTransport, nil)

	require.NoError(t, server.Start(buildTestDispatcher(t)))
	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop())
}
