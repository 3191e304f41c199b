// file: internal/transport/orchestrator.go
package transport

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/dispatch"
	"github.com/mcpkit/server/internal/logging"
)

// DispatchTransport is the contract a transport implementation offers the orchestrator:
// a name for logging/diagnostics, a Start that begins feeding decoded messages to fn in the
// background and returns, the feeding lasting until Stop is called or the transport's own
// I/O fails, and an idempotent Stop.
type DispatchTransport interface {
	Name() string
	Start(fn dispatch.Func) error
	Stop() error
}

// Orchestrator owns the set of registered transports and starts/stops them together.
// Registration is append-only: registering a transport whose Name() collides with an
// already-registered one appends rather than replaces, so both instances run side by
// side (the caller is responsible for giving transports distinct names if collision
// is undesired).
type Orchestrator struct {
	mu         sync.Mutex
	transports []DispatchTransport
	logger     logging.Logger
}

// NewOrchestrator builds an empty Orchestrator.
func NewOrchestrator(logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Orchestrator{logger: logger.WithField("component", "transport.orchestrator")}
}

// Register appends t to the set of managed transports.
func (o *Orchestrator) Register(t DispatchTransport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transports = append(o.transports, t)
}

// Count returns the number of registered transports.
func (o *Orchestrator) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.transports)
}

// StartAll starts every registered transport with fn, attempting all of them even if
// some fail, and returns a single aggregated error naming how many of how many failed.
func (o *Orchestrator) StartAll(fn dispatch.Func) error {
	o.mu.Lock()
	transports := make([]DispatchTransport, len(o.transports))
	copy(transports, o.transports)
	o.mu.Unlock()

	var failures []string
	for _, t := range transports {
		if err := t.Start(fn); err != nil {
			o.logger.Error("transport failed to start", "transport", t.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", t.Name(), err))
			continue
		}
		o.logger.Info("transport started", "transport", t.Name())
	}

	if len(failures) > 0 {
		return errors.Newf("failed to start %d of %d transports: %s", len(failures), len(transports), strings.Join(failures, "; "))
	}
	return nil
}

// StopAll stops every registered transport, logging but not aborting on individual
// failures so a slow or broken transport never prevents the others from stopping.
func (o *Orchestrator) StopAll() {
	o.mu.Lock()
	transports := make([]DispatchTransport, len(o.transports))
	copy(transports, o.transports)
	o.mu.Unlock()

	for _, t := range transports {
		if err := t.Stop(); err != nil {
			o.logger.Error("transport failed to stop cleanly", "transport", t.Name(), "error", err)
			continue
		}
		o.logger.Info("transport stopped", "transport", t.Name())
	}
}
