// Package corectx defines the per-request context and middleware function shapes shared
// between the middleware engine and the dispatcher, kept separate from both so neither
// needs to import the other.
// file: internal/corectx/context.go
package corectx

import (
	"time"

	"github.com/mcpkit/server/internal/jsonrpc"
)

// TransportInfo identifies the transport a request arrived on.
type TransportInfo struct {
	Name string
}

// TransportMetadata accompanies a decoded message from a transport.
type TransportMetadata struct {
	Transport TransportInfo
	RequestID interface{}
	Method    string
	Timestamp time.Time
}

// UserContext carries caller identity/authorization data a middleware may populate
// before authorization-aware registry dispatch runs.
type UserContext struct {
	ID          string
	Roles       []string
	Permissions []string
}

// ExecutionContext is populated by a primitive registry immediately before invoking hooks
// and the handler.
type ExecutionContext struct {
	ExecutionID string
	StartTime   time.Time
	Timeout     time.Duration
	Metadata    map[string]interface{}
}

// RegistryContext records which registry/kind served (or is about to serve) the request.
type RegistryContext struct {
	Kind     string
	Metadata map[string]interface{}
}

// RequestContext is built fresh for every incoming message and threaded through the
// composed middleware and the core routing function. State lives only for the duration
// of one request; nothing here is shared across requests.
type RequestContext struct {
	Request   *jsonrpc.Message
	Respond   func(*jsonrpc.Message)
	Transport TransportInfo
	State     map[string]interface{}
	Response  *jsonrpc.Message
	User      *UserContext
	Execution *ExecutionContext
	Registry  *RegistryContext
}

// NewRequestContext builds an empty RequestContext for req, arriving over transport,
// that will reply via respond.
func NewRequestContext(req *jsonrpc.Message, respond func(*jsonrpc.Message), transport TransportInfo) *RequestContext {
	return &RequestContext{
		Request:   req,
		Respond:   respond,
		Transport: transport,
		State:     make(map[string]interface{}),
	}
}
