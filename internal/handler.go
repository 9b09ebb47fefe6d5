package internal

import (
	"context"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

// Action handles one request. The result is wrapped into a response:
// a string becomes text/html, maps, slices and structs become JSON, a
// *httpmsg.Response passes through unchanged and anything else yields 204.
//
// Example:
//
//	func (c *HomeController) index(ctx context.Context, req *httpmsg.ServerRequest) (any, error) {
//	    return "Welcome", nil
//	}
type Action func(ctx context.Context, req *httpmsg.ServerRequest) (any, error)

// NextFunc produces the response for a request further down the pipeline.
type NextFunc func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error)

// Middleware wraps a NextFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func Timing(next internal.NextFunc) internal.NextFunc {
//	    return func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
//	        start := time.Now()
//	        resp, err := next(ctx, req)
//	        slog.DebugContext(ctx, "handled", slog.Duration("took", time.Since(start)))
//	        return resp, err
//	    }
//	}
type Middleware func(next NextFunc) NextFunc

// Controller exposes named actions. The registry resolves a route
// descriptor's action name against this map.
type Controller interface {
	Actions() map[string]Action
}

// ActionMap is a Controller backed by a plain map.
type ActionMap map[string]Action

func (m ActionMap) Actions() map[string]Action { return m }

// chain applies middlewares so the first one is outermost.
func chain(h NextFunc, mws []Middleware) NextFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
