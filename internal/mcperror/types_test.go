// file: internal/mcperror/types_test.go
package mcperror

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	pErr := NewProtocolError(CodeLifecycleViolation, "not ready", map[string]interface{}{"state": "Initializing"}).WithCause(cause)

	assert.Equal(t, "mcp error -32000: not ready", pErr.Error())
	assert.ErrorIs(t, pErr, cause)
}

func TestCodeFor(t *testing.T) {
	pErr := NewProtocolError(CodeNotInitialized, "nope", nil)
	assert.Equal(t, CodeNotInitialized, CodeFor(pErr))
	assert.Equal(t, CodeInternalError, CodeFor(errors.New("plain")))
}

func TestNewMethodNotFoundError(t *testing.T) {
	err := NewMethodNotFoundError("tools/frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools/frobnicate")
	assert.Equal(t, CategoryRPC, GetErrorCategory(err))
}

func TestIsLifecycleHelpers(t *testing.T) {
	err := errors.Mark(errors.New("already init"), ErrAlreadyInitialized)
	assert.True(t, IsAlreadyInitialized(err))
	assert.False(t, IsNotInitialized(err))
}
