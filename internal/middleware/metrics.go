// file: internal/middleware/metrics.go
package middleware

import (
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/metrics"
)

// MetricsCollector returns a Middleware that increments m.IncRequests() for every request
// and m.IncError(code) whenever ctx.Response ends up carrying a JSON-RPC error, whether
// that error was set by core routing or by an inner error-mapper middleware.
func MetricsCollector(m *metrics.Metrics) corectx.Middleware {
	return func(ctx *corectx.RequestContext, next corectx.Next) error {
		m.IncRequests()
		err := next(ctx)
		if ctx.Response != nil && ctx.Response.Error != nil {
			m.IncError(ctx.Response.Error.Code)
		}
		return err
	}
}
