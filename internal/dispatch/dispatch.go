// Package dispatch implements the request gate + dispatcher (C8): it builds a
// RequestContext per incoming message, runs the composed middleware chain around a core
// routing function, and converts primitive-registry results back into JSON-RPC
// responses. This is the function every transport is ultimately handed.
// file: internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/gate"
	"github.com/mcpkit/server/internal/handshake"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/mcperror"
	"github.com/mcpkit/server/internal/mcptypes"
	"github.com/mcpkit/server/internal/metrics"
	"github.com/mcpkit/server/internal/middleware"
	"github.com/mcpkit/server/internal/registry"
)

// Func is the shape a transport invokes for every decoded message: the message itself,
// a callback to emit a response (never called for a notification that sets no
// response), and metadata about where the message arrived from.
type Func func(msg *jsonrpc.Message, respond func(*jsonrpc.Message), meta corectx.TransportMetadata)

// Dispatcher wires the gate, handshake handlers, and primitive registries behind a
// composed middleware chain.
type Dispatcher struct {
	gate      *gate.Gate
	handshake *handshake.Handlers
	prompts   *registry.PromptRegistry
	tools     *registry.ToolRegistry
	resources *registry.ResourceRegistry
	compose   func(ctx *corectx.RequestContext, core corectx.CoreHandler) error
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// Options bundles a Dispatcher's collaborators.
type Options struct {
	Gate       *gate.Gate
	Handshake  *handshake.Handlers
	Prompts    *registry.PromptRegistry
	Tools      *registry.ToolRegistry
	Resources  *registry.ResourceRegistry
	Middleware []corectx.Middleware
	Metrics    *metrics.Metrics
	Logger     logging.Logger
}

// New builds a Dispatcher from opts, composing opts.Middleware in registration order
// around the core routing function.
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Dispatcher{
		gate:      opts.Gate,
		handshake: opts.Handshake,
		prompts:   opts.Prompts,
		tools:     opts.Tools,
		resources: opts.Resources,
		compose:   middleware.ApplyMiddleware(opts.Middleware),
		metrics:   m,
		logger:    logger.WithField("component", "dispatch"),
	}
}

// Dispatch builds the Func handed to every transport.
func (d *Dispatcher) Dispatch() Func {
	return func(msg *jsonrpc.Message, respond func(*jsonrpc.Message), meta corectx.TransportMetadata) {
		ctx := corectx.NewRequestContext(msg, respond, meta.Transport)

		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic recovered in dispatch", "panic", r)
				errResp := d.internalErrorResponse(msg, errors.Newf("panic: %v", r))
				if errResp != nil {
					respond(errResp)
				}
			}
		}()

		err := d.compose(ctx, d.core)
		if err != nil {
			// An error escaping every middleware (including the reference ErrorMapper,
			// which Builder.Listen installs as the innermost layer and which suppresses
			// errors into ctx.Response) is mapped to InternalError here, preserving the message.
			if resp := d.internalErrorResponse(msg, err); resp != nil {
				respond(resp)
			}
			return
		}

		if ctx.Response != nil {
			respond(ctx.Response)
		}
		// A notification that set no response emits nothing.
	}
}

func (d *Dispatcher) internalErrorResponse(msg *jsonrpc.Message, err error) *jsonrpc.Message {
	var id json.RawMessage
	if msg != nil {
		id = msg.ID
	}
	return &jsonrpc.Message{
		JSONRPC: jsonrpc.Version,
		ID:      id,
		Error:   &jsonrpc.Error{Code: mcperror.CodeInternalError, Message: err.Error()},
	}
}

// core is the innermost routing function the composed middleware chain ultimately
// invokes once every middleware has called next.
func (d *Dispatcher) core(ctx *corectx.RequestContext) error {
	ctx2 := context.Background()
	req := ctx.Request
	if req == nil {
		return errors.New("dispatch: nil request")
	}
	method := req.Method

	if verr := d.gate.GetValidationError(method); verr != nil {
		ctx.Response = &jsonrpc.Message{
			JSONRPC: jsonrpc.Version,
			ID:      req.ID,
			Error:   &jsonrpc.Error{Code: verr.Code, Message: verr.Message, Data: marshalData(verr.Data)},
		}
		return nil
	}

	switch method {
	case "initialize":
		ctx.Response = d.handshake.HandleInitialize(ctx2, req.ID, req.Params)
		return nil

	case "notifications/initialized":
		return d.handshake.HandleInitialized(ctx2)

	case "shutdown":
		ctx.Response = d.handshake.HandleShutdown(ctx2, req.ID, req.Params)
		return nil

	case "prompts/list":
		return d.handlePromptsList(ctx2, ctx)

	case "tools/list":
		return d.handleToolsList(ctx2, ctx)

	case "resources/list":
		return d.handleResourcesList(ctx2, ctx)

	case "prompts/get":
		return d.handlePromptsGet(ctx2, ctx)

	case "tools/call":
		return d.handleToolsCall(ctx2, ctx)

	case "resources/read":
		return d.handleResourcesRead(ctx2, ctx)

	default:
		ctx.Response = &jsonrpc.Message{
			JSONRPC: jsonrpc.Version,
			ID:      req.ID,
			Error:   &jsonrpc.Error{Code: mcperror.CodeMethodNotFound, Message: fmt.Sprintf("method '%s' not found", method)},
		}
		return nil
	}
}

func marshalData(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (d *Dispatcher) success(ctx *corectx.RequestContext, result interface{}) error {
	b, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	ctx.Response = &jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: ctx.Request.ID, Result: b}
	return nil
}

func descriptorsToItems(descs []registry.Descriptor) []json.RawMessage {
	items := make([]json.RawMessage, 0, len(descs))
	for _, d := range descs {
		b, err := json.Marshal(d)
		if err != nil {
			continue
		}
		items = append(items, b)
	}
	return items
}

func (d *Dispatcher) handlePromptsList(_ context.Context, ctx *corectx.RequestContext) error {
	descs := d.prompts.List(registry.ListFilter{})
	return d.success(ctx, mcptypes.ListResult{Items: descriptorsToItems(descs)})
}

func (d *Dispatcher) handleToolsList(_ context.Context, ctx *corectx.RequestContext) error {
	descs := d.tools.List(registry.ListFilter{})
	return d.success(ctx, mcptypes.ListResult{Items: descriptorsToItems(descs)})
}

type listParams struct {
	Cursor string `json:"cursor,omitempty"`
}

func (d *Dispatcher) handleResourcesList(ctx2 context.Context, ctx *corectx.RequestContext) error {
	var p listParams
	if len(ctx.Request.Params) > 0 {
		_ = json.Unmarshal(ctx.Request.Params, &p)
	}
	list := d.resources.List(ctx2, p.Cursor)
	return d.success(ctx, mcptypes.ListResult{Items: descriptorsToItems(list.Resources), NextCursor: list.NextCursor})
}

type namedArgsParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (d *Dispatcher) handlePromptsGet(ctx2 context.Context, ctx *corectx.RequestContext) error {
	var p namedArgsParams
	if err := json.Unmarshal(ctx.Request.Params, &p); err != nil {
		return errors.Wrap(err, "invalid prompts/get params")
	}
	if p.Arguments == nil {
		p.Arguments = map[string]interface{}{}
	}

	result, err := d.prompts.Get(ctx2, p.Name, p.Arguments, ctx)
	if err != nil {
		return err
	}

	text := result.Text
	if result.Kind == registry.KindStream {
		text = drainStream(result.Stream)
	}

	return d.success(ctx, mcptypes.GetPromptResult{
		Messages: []mcptypes.PromptMessage{{Role: "user", Content: mcptypes.NewTextContent(text)}},
	})
}

// drainStream consumes a lazy, single-pass prompt stream into one concatenated string.
// The registry contract guarantees the channel is finite; the dispatcher is the first
// consumer, so laziness is preserved up to this point exactly as the registry promises.
func drainStream(ch <-chan string) string {
	var out string
	for chunk := range ch {
		out += chunk
	}
	return out
}

func (d *Dispatcher) handleToolsCall(ctx2 context.Context, ctx *corectx.RequestContext) error {
	var p namedArgsParams
	if err := json.Unmarshal(ctx.Request.Params, &p); err != nil {
		return errors.Wrap(err, "invalid tools/call params")
	}
	if p.Arguments == nil {
		p.Arguments = map[string]interface{}{}
	}

	result, err := d.tools.Call(ctx2, p.Name, p.Arguments, ctx)
	if err != nil {
		return err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal tool result")
	}

	return d.success(ctx, mcptypes.CallToolResult{
		Content: []mcptypes.TextContent{mcptypes.NewTextContent(string(resultJSON))},
	})
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (d *Dispatcher) handleResourcesRead(ctx2 context.Context, ctx *corectx.RequestContext) error {
	var p readResourceParams
	if err := json.Unmarshal(ctx.Request.Params, &p); err != nil {
		return errors.Wrap(err, "invalid resources/read params")
	}

	content, err := d.resources.Get(ctx2, p.URI, ctx)
	if err != nil {
		return err
	}

	dataJSON, err := json.Marshal(content.Data)
	if err != nil {
		return errors.Wrap(err, "marshal resource content")
	}

	return d.success(ctx, mcptypes.ReadResourceResult{
		Contents: []mcptypes.ResourceContent{{URI: p.URI, MimeType: "application/json", Text: string(dataJSON)}},
	})
}
