// Package middleware implements the onion-style composition engine and the reference
// middlewares (error mapping, logging, metrics) that the dispatcher installs around the
// core routing function.
// file: internal/middleware/chain.go
package middleware

import "github.com/mcpkit/server/internal/corectx"

// ApplyMiddleware composes chain into a single function that, given a RequestContext and
// the core routing function, executes chain[0](ctx, next0) where next0 invokes
// chain[1](ctx, next1), and so on; the innermost next invokes core. Registration order
// is preserved: the first middleware in chain is the outermost layer.
func ApplyMiddleware(chain []corectx.Middleware) func(ctx *corectx.RequestContext, core corectx.CoreHandler) error {
	return func(ctx *corectx.RequestContext, core corectx.CoreHandler) error {
		var run func(i int) error
		run = func(i int) error {
			if i == len(chain) {
				return core(ctx)
			}
			return chain[i](ctx, func(ctx *corectx.RequestContext) error {
				return run(i + 1)
			})
		}
		return run(0)
	}
}

// Chain is a fluent builder for assembling a middleware list before composing it:
// append freely, then call Build once the list is final.
type Chain struct {
	middlewares []corectx.Middleware
}

// NewChain creates an empty middleware chain.
func NewChain() *Chain {
	return &Chain{}
}

// Use appends middleware to the chain and returns the chain for fluent calls.
func (c *Chain) Use(mw corectx.Middleware) *Chain {
	c.middlewares = append(c.middlewares, mw)
	return c
}

// Build returns the composed dispatch function around core.
func (c *Chain) Build(core corectx.CoreHandler) func(ctx *corectx.RequestContext) error {
	composed := ApplyMiddleware(c.middlewares)
	return func(ctx *corectx.RequestContext) error {
		return composed(ctx, core)
	}
}
