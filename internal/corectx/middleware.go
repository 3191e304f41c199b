// file: internal/corectx/middleware.go
package corectx

// Next is the suspendable continuation a Middleware calls to advance to the next
// middleware, or to the core routing function at the innermost layer. Omitting the call
// short-circuits the chain: no further middleware and no core handler run.
type Next func(ctx *RequestContext) error

// Middleware wraps next with before/after behavior around a single request. Setting
// ctx.Response before returning signals the response to emit; leaving it unset on a
// notification is legal (no reply is sent).
type Middleware func(ctx *RequestContext, next Next) error

// CoreHandler is the innermost routing function a composed middleware chain ultimately
// invokes once every middleware has called next.
type CoreHandler func(ctx *RequestContext) error
