// file: internal/metrics/server_metrics_test.go
package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := New()
	m.IncRequests()
	m.IncRequests()
	m.IncError(-32602)
	m.SetActiveTransports(2)

	snap := m.Snapshot("Ready")
	assert.EqualValues(t, 2, snap.RequestsTotal)
	assert.EqualValues(t, 1, snap.ErrorsByCode[-32602])
	assert.Equal(t, 2, snap.ActiveTransports)
	assert.Equal(t, "Ready", snap.LifecycleState)
}
