// file: internal/capability/registry_test.go
package capability

import (
	"testing"

	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCapabilities(t *testing.T) {
	r := NewRegistry()
	caps := r.ServerCapabilities()
	assert.NotNil(t, caps.Experimental)
	assert.NotNil(t, caps.Logging)
	assert.Nil(t, caps.Tools)
}

func TestDynamicToolsCapability(t *testing.T) {
	r := NewRegistry()
	r.SetCountsProvider(func() PrimitiveCounts { return PrimitiveCounts{Tools: 1} })
	caps := r.ServerCapabilities()
	assert.NotNil(t, caps.Tools)
}

func TestDisableCapabilityDynamicCountsReinstate(t *testing.T) {
	r := NewRegistry()
	r.SetCountsProvider(func() PrimitiveCounts { return PrimitiveCounts{Tools: 3} })
	r.DisableCapability("tools")
	caps := r.ServerCapabilities()
	assert.NotNil(t, caps.Tools)
}

func TestProcessClientCapabilities(t *testing.T) {
	r := NewRegistry()
	r.ProcessClientCapabilities(mcptypes.ClientCapabilities{Sampling: map[string]interface{}{}})
	assert.True(t, r.ClientHasSampling())
	assert.False(t, r.ClientHasExperimental())
}

func TestAddExperimentalCapability(t *testing.T) {
	r := NewRegistry()
	r.AddExperimentalCapability("foo", map[string]interface{}{"enabled": true})
	caps := r.ServerCapabilities()
	assert.Contains(t, caps.Experimental, "foo")
}
