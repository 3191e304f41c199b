package registry

import (
	"context"
	"testing"

	"github.com/mcpkit/server/internal/corectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, args map[string]interface{}, _ *corectx.RequestContext) (interface{}, error) {
	return args, nil
}

func TestToolRegistryRejectsDuplicateName(t *testing.T) {
	r := NewToolRegistry(nil)
	def := ToolDefinition{Name: "delete-file", Handler: echoHandler}
	require.NoError(t, r.Register(def))
	err := r.Register(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

// Covers the scope-intersection testable property: execution is permitted iff the
// caller's permissions intersect the tool's declared scopes, and otherwise fails with
// a message naming the required scopes.
func TestToolRegistryScopesAuthorization(t *testing.T) {
	r := NewToolRegistry(nil)
	require.NoError(t, r.Register(ToolDefinition{
		Name:   "restricted",
		Scopes: []string{"a", "b"},
		Handler: echoHandler,
	}))

	_, err := r.Call(context.Background(), "restricted", nil, &corectx.RequestContext{
		User: &corectx.UserContext{Permissions: []string{"c"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires one of scopes")

	_, err = r.Call(context.Background(), "restricted", nil, &corectx.RequestContext{
		User: &corectx.UserContext{Permissions: []string{"b"}},
	})
	require.NoError(t, err)
}

func TestToolRegistryExactScopeAuthorization(t *testing.T) {
	r := NewToolRegistry(nil)
	require.NoError(t, r.Register(ToolDefinition{Name: "admin-only", Scope: "admin", Handler: echoHandler}))

	_, err := r.Call(context.Background(), "admin-only", nil, &corectx.RequestContext{
		State: map[string]interface{}{"scope": "user"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires scope 'admin'")

	_, err = r.Call(context.Background(), "admin-only", nil, &corectx.RequestContext{
		State: map[string]interface{}{"scope": "admin"},
	})
	require.NoError(t, err)
}

func TestToolRegistryDangerousAuthorization(t *testing.T) {
	r := NewToolRegistry(nil)
	require.NoError(t, r.Register(ToolDefinition{Name: "rm-rf", Dangerous: true, Handler: echoHandler}))

	_, err := r.Call(context.Background(), "rm-rf", nil, &corectx.RequestContext{
		User: &corectx.UserContext{Permissions: []string{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous-tools")

	_, err = r.Call(context.Background(), "rm-rf", nil, &corectx.RequestContext{
		User: &corectx.UserContext{Permissions: []string{"dangerous-tools"}},
	})
	require.NoError(t, err)
}

func TestToolRegistryParameterValidation(t *testing.T) {
	r := NewToolRegistry(nil)
	require.NoError(t, r.Register(ToolDefinition{
		Name:       "search",
		Parameters: []Argument{{Name: "query", Required: true, Type: "string"}},
		Handler:    echoHandler,
	}))

	_, err := r.Call(context.Background(), "search", map[string]interface{}{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required parameter 'query'")
}

func TestToolRegistryOnErrorHookFires(t *testing.T) {
	r := NewToolRegistry(nil)
	hookFired := false
	require.NoError(t, r.Register(ToolDefinition{
		Name: "failing",
		Hooks: Hooks{
			OnError: func(_ context.Context, _ error, _ *corectx.RequestContext) { hookFired = true },
		},
		Handler: func(_ context.Context, _ map[string]interface{}, _ *corectx.RequestContext) (interface{}, error) {
			return nil, assert.AnError
		},
	}))

	_, err := r.Call(context.Background(), "failing", nil, nil)
	require.Error(t, err)
	assert.True(t, hookFired)
}
