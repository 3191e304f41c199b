// file: internal/middleware/logging.go
package middleware

import (
	"time"

	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/logging"
)

// RequestLogging returns a Middleware that logs method, transport, and duration for
// every request at Debug level, and the error (if any) at Warn level.
func RequestLogging(logger logging.Logger) corectx.Middleware {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "middleware.logging")

	return func(ctx *corectx.RequestContext, next corectx.Next) error {
		start := time.Now()
		method := ""
		if ctx.Request != nil {
			method = ctx.Request.Method
		}
		log.Debug("request received", "method", method, "transport", ctx.Transport.Name)

		err := next(ctx)

		fields := []any{"method", method, "duration", time.Since(start)}
		if err != nil {
			log.Warn("request failed", append(fields, "error", err)...)
		} else {
			log.Debug("request completed", fields...)
		}
		return err
	}
}
