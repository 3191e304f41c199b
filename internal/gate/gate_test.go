// file: internal/gate/gate_test.go
package gate

import (
	"context"
	"testing"

	"github.com/mcpkit/server/internal/capability"
	"github.com/mcpkit/server/internal/lifecycle"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*Gate, *lifecycle.Manager) {
	t.Helper()
	mgr := lifecycle.NewManager(capability.NewRegistry(), nil)
	return New(mgr), mgr
}

func TestGate_AlwaysAllowed(t *testing.T) {
	g, _ := newTestGate(t)
	for _, m := range []string{"ping", "notifications/cancelled", "notifications/progress"} {
		assert.Nil(t, g.GetValidationError(m))
	}
}

func TestGate_PreInit_NotInitialized(t *testing.T) {
	g, _ := newTestGate(t)
	verr := g.GetValidationError("tools/list")
	require.NotNil(t, verr)
	assert.Equal(t, mcperror.CodeNotInitialized, verr.Code)
}

func TestGate_PostShutdown(t *testing.T) {
	g, mgr := newTestGate(t)
	ctx := context.Background()
	_, err := mgr.Initialize(ctx, mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)
	require.NoError(t, mgr.Initialized(ctx))
	require.NoError(t, mgr.Shutdown(ctx, "done", nil))

	verr := g.GetValidationError("tools/list")
	require.NotNil(t, verr)
	assert.Equal(t, mcperror.CodePostShutdown, verr.Code)
}

func TestGate_InitializingNotReady(t *testing.T) {
	g, mgr := newTestGate(t)
	ctx := context.Background()
	_, err := mgr.Initialize(ctx, mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)

	verr := g.GetValidationError("tools/list")
	require.NotNil(t, verr)
	assert.Equal(t, mcperror.CodeLifecycleViolation, verr.Code)
}

func TestGate_ReadyAllowsOperational(t *testing.T) {
	g, mgr := newTestGate(t)
	ctx := context.Background()
	_, err := mgr.Initialize(ctx, mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)
	require.NoError(t, mgr.Initialized(ctx))

	assert.Nil(t, g.GetValidationError("tools/list"))
	assert.Nil(t, g.GetValidationError("unknown/method"))
}

func TestGate_DuplicateInitialize(t *testing.T) {
	g, mgr := newTestGate(t)
	ctx := context.Background()
	_, err := mgr.Initialize(ctx, mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)

	verr := g.GetValidationError("initialize")
	require.NotNil(t, verr)
	assert.Equal(t, mcperror.CodeInvalidRequest, verr.Code)
}

func TestGate_NotificationsInitialized_OnlyDuringInitializing(t *testing.T) {
	g, mgr := newTestGate(t)
	ctx := context.Background()

	verr := g.GetValidationError("notifications/initialized")
	require.NotNil(t, verr)
	assert.Equal(t, mcperror.CodeLifecycleViolation, verr.Code)

	_, err := mgr.Initialize(ctx, mcptypes.InitializeParams{ProtocolVersion: mcptypes.ProtocolVersion20250618})
	require.NoError(t, err)
	assert.Nil(t, g.GetValidationError("notifications/initialized"))
}
