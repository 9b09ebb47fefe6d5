// Package internal provides the request-lifecycle engine behind the framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dfiliuk-tech/hw-2" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: drives one request through security, authentication, routing,
//     dispatch and result wrapping, and never fails to produce a response
//   - Router: exact (method, path) route table over a handler Resolver
//   - Registry: controller identifier to Controller mapping
//   - Security: session context, authentication gate, CSRF tokens and
//     response header policy
//   - SessionManager: loads sessions from the session cookie and persists them
//   - Middleware: wraps the pipeline's NextFunc
//
// # Lifecycle
//
//	RECEIVE -> SECURITY_WRAP -> AUTHENTICATE -> (302 /login) | ROUTE_MATCH
//	        -> DISPATCH -> WRAP_RESULT -> RESPOND
//
// A route mismatch becomes a 404 text/html page, any other failure a 500.
// Whether 500 pages carry the failure message is controlled by
// WithVerboseErrors.
//
// # Application Structure
//
//	registry := internal.NewRegistry()
//	registry.Register("home", internal.ActionMap{
//	    "index": func(ctx context.Context, req *httpmsg.ServerRequest) (any, error) {
//	        return "Welcome", nil
//	    },
//	})
//	router := internal.NewRouter(registry)
//	if err := router.Add(http.MethodGet, "/", internal.Descriptor{Controller: "home", Action: "index"}); err != nil {
//	    return err
//	}
//	app, err := internal.New(internal.WithRouter(router))
//
// # Transport
//
// App implements http.Handler. FromHTTPRequest and WriteResponse are the
// only points where net/http types meet the message types; Run mounts the
// app behind a chi router that also serves health probes and metrics.
package internal
