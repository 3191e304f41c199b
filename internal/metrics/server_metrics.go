// Package metrics provides lightweight in-process counters for the dispatcher and
// transport orchestrator: total requests handled, errors grouped by JSON-RPC code, and
// the number of currently active transports. Metrics are a passive observer — nothing
// in the core pipeline reads them back to make decisions.
// file: internal/metrics/server_metrics.go
package metrics

import "sync"

// Snapshot is a point-in-time copy of the counters, safe to serialize or log.
type Snapshot struct {
	RequestsTotal    int64
	ErrorsByCode     map[int]int64
	ActiveTransports int
	LifecycleState   string
}

// Metrics holds the server's counters behind a mutex; reads and writes are both cheap and
// infrequent enough that atomics would add complexity without a measurable benefit here.
type Metrics struct {
	mu               sync.Mutex
	requestsTotal    int64
	errorsByCode     map[int]int64
	activeTransports int
}

// New creates an empty Metrics collector.
func New() *Metrics {
	return &Metrics{errorsByCode: make(map[int]int64)}
}

// IncRequests records one dispatched request, successful or not.
func (m *Metrics) IncRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
}

// IncError records one error response with the given JSON-RPC code.
func (m *Metrics) IncError(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorsByCode[code]++
}

// SetActiveTransports sets the current count of running transports.
func (m *Metrics) SetActiveTransports(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeTransports = n
}

// Snapshot returns a copy of the current counters. lifecycleState is supplied by the
// caller since Metrics itself holds no reference to the lifecycle manager.
func (m *Metrics) Snapshot(lifecycleState string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCode := make(map[int]int64, len(m.errorsByCode))
	for k, v := range m.errorsByCode {
		byCode[k] = v
	}
	return Snapshot{
		RequestsTotal:    m.requestsTotal,
		ErrorsByCode:     byCode,
		ActiveTransports: m.activeTransports,
		LifecycleState:   lifecycleState,
	}
}
