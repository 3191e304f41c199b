// file: internal/middleware/error_mapper.go
package middleware

import (
	"encoding/json"

	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/jsonrpc"
	"github.com/mcpkit/server/internal/mcperror"
)

// ErrorMapper returns a Middleware that converts any error returned by next into a
// JSON-RPC error envelope on ctx.Response, suppressing the error for outer layers. A
// *mcperror.ProtocolError or an ErrorWithDetails-wrapped error reports its own code (tool
// scope/permission failures built with mcperror.NewAuthorizationError carry -32000, per
// the reference stack's authorization-error mapping); anything uncategorized defaults to
// CodeInternalError, matching registry dispatch failures that aren't otherwise classified.
func ErrorMapper() corectx.Middleware {
	return func(ctx *corectx.RequestContext, next corectx.Next) error {
		err := next(ctx)
		if err == nil {
			return nil
		}

		code := mcperror.CodeFor(err)

		var id json.RawMessage
		if ctx.Request != nil {
			id = ctx.Request.ID
		}
		ctx.Response = &jsonrpc.Message{
			JSONRPC: jsonrpc.Version,
			ID:      id,
			Error: &jsonrpc.Error{
				Code:    code,
				Message: err.Error(),
			},
		}
		return nil
	}
}
