// file: internal/middleware/chain_test.go
package middleware

import (
	"testing"

	"github.com/mcpkit/server/internal/corectx"
	"github.com/stretchr/testify/assert"
)

func record(log *[]string, name string) corectx.Middleware {
	return func(ctx *corectx.RequestContext, next corectx.Next) error {
		*log = append(*log, name+"-enter")
		err := next(ctx)
		*log = append(*log, name+"-exit")
		return err
	}
}

func TestOnionOrdering(t *testing.T) {
	var log []string
	chain := []corectx.Middleware{record(&log, "A"), record(&log, "B"), record(&log, "C")}
	core := func(ctx *corectx.RequestContext) error {
		log = append(log, "core")
		return nil
	}

	ctx := corectx.NewRequestContext(nil, nil, corectx.TransportInfo{Name: "test"})
	err := ApplyMiddleware(chain)(ctx, core)

	assert.NoError(t, err)
	assert.Equal(t, []string{"A-enter", "B-enter", "C-enter", "core", "C-exit", "B-exit", "A-exit"}, log)
}

func TestShortCircuit(t *testing.T) {
	var log []string
	shortCircuit := func(ctx *corectx.RequestContext, next corectx.Next) error {
		log = append(log, "B-enter")
		return nil // omits calling next.
	}
	chain := []corectx.Middleware{record(&log, "A"), shortCircuit, record(&log, "C")}
	core := func(ctx *corectx.RequestContext) error {
		log = append(log, "core")
		return nil
	}

	ctx := corectx.NewRequestContext(nil, nil, corectx.TransportInfo{Name: "test"})
	err := ApplyMiddleware(chain)(ctx, core)

	assert.NoError(t, err)
	assert.Equal(t, []string{"A-enter", "B-enter", "A-exit"}, log)
}
