// file: internal/transport/stdio.go
package transport

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/dispatch"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/logging"
)

// StdioTransport is the reference DispatchTransport: newline-delimited JSON over the
// process's own stdin/stdout. Because stdout is the wire channel, anything the process
// writes to the real os.Stdout while this transport is running would corrupt the stream,
// so Start reroutes the package-level diagnostic writer to os.Stderr for its duration and
// restores it on Stop.
type StdioTransport struct {
	ndjson *NDJSONTransport
	logger logging.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewStdioTransport builds a StdioTransport over the process's stdin/stdout.
func NewStdioTransport(logger logging.Logger) *StdioTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	t := NewNDJSONTransport(os.Stdin, os.Stdout, os.Stdin, logger)
	return &StdioTransport{
		ndjson: t.(*NDJSONTransport),
		logger: logger.WithField("component", "transport.stdio"),
	}
}

// Name implements DispatchTransport.
func (s *StdioTransport) Name() string { return "stdio" }

// Start reads newline-delimited JSON-RPC messages from stdin until Stop is called or
// the stream closes, handing each decoded message to fn. A message that fails to parse
// gets an immediate -32700 parse-error response with a null id; the loop continues
// reading rather than aborting, since one malformed line should not kill the session.
func (s *StdioTransport) Start(fn dispatch.Func) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("stdio transport already started")
	}
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	DivertDiagnostics(os.Stderr)

	go s.loop(fn)
	return nil
}

func (s *StdioTransport) loop(fn dispatch.Func) {
	defer close(s.done)
	ctx := context.Background()
	for {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if !running {
			return
		}

		raw, err := s.ndjson.ReadMessage(ctx)
		if err != nil {
			if IsClosedError(err) || errors.Is(err, io.EOF) {
				return
			}
			s.logger.Warn("stdio read failed", "error", err)
			s.respond(&jsonrpc.Message{
				JSONRPC: jsonrpc.Version,
				ID:      json.RawMessage("null"),
				Error:   &jsonrpc.Error{Code: -32700, Message: "Parse error"},
			})
			continue
		}

		var msg jsonrpc.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.respond(&jsonrpc.Message{
				JSONRPC: jsonrpc.Version,
				ID:      json.RawMessage("null"),
				Error:   &jsonrpc.Error{Code: -32700, Message: "Parse error"},
			})
			continue
		}

		fn(&msg, s.respond, corectx.TransportMetadata{Transport: corectx.TransportInfo{Name: s.Name()}})
	}
}

func (s *StdioTransport) respond(msg *jsonrpc.Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	if err := s.ndjson.WriteMessage(context.Background(), b); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// Stop is idempotent: it marks the transport stopped, closes the underlying stream, and
// restores the process's diagnostic writer.
func (s *StdioTransport) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	done := s.done
	s.mu.Unlock()

	err := s.ndjson.Close()
	RestoreDiagnostics()
	if done != nil {
		<-done
	}
	return err
}

// diagnosticsMu serializes concurrent Divert/Restore calls; exported diagnostic state is
// process-wide because os.Stdout itself is process-wide.
var diagnosticsMu sync.Mutex

// DivertDiagnostics redirects the package-level default logger to w for as long as a
// stdio transport owns stdout. Call RestoreDiagnostics to undo it.
func DivertDiagnostics(w io.Writer) {
	diagnosticsMu.Lock()
	defer diagnosticsMu.Unlock()
	logging.InitLogging(logging.LevelInfo, w)
}

// RestoreDiagnostics points the default logger back at standard error.
func RestoreDiagnostics() {
	diagnosticsMu.Lock()
	defer diagnosticsMu.Unlock()
	logging.InitLogging(logging.LevelInfo, os.Stderr)
}
