// Package middlewares provides pipeline middleware for framework applications.
//
// Every middleware has the internal.Middleware shape: it wraps the NextFunc
// that authenticates, routes and dispatches a request, and runs inside the
// session context established by the security layer.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing and debugging.
// It checks incoming headers for existing IDs or generates a UUID, and
// exposes it through the context, the "request_id" attribute and the
// X-Request-ID response header.
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//	app, err := framework.New(
//	    framework.WithLogger(log),
//	    framework.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics and returns them as *PanicError, which the app
// renders as a 500 response. WithRecoverHook lets a metrics counter observe
// every panic.
//
//	framework.WithMiddleware(
//	    middlewares.Recover(
//	        middlewares.WithRecoverLogger(log),
//	        middlewares.WithRecoverHook(func(ctx context.Context, _ *middlewares.PanicError) {
//	            m.IncPanic()
//	        }),
//	    ),
//	)
//
// # Timeout
//
// Timeout enforces a deadline and fails with a 504 HTTPError wrapping a
// *TimeoutError. The pipeline runs on the request goroutine; use
// ctx.Done() for early termination.
//
//	framework.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # CORS
//
// CORS answers preflight (OPTIONS) requests with 204 and adds CORS headers
// to all other responses.
//
//	framework.WithMiddleware(
//	    middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    ),
//	)
//
// # Recommended Middleware Order
//
//	framework.WithMiddleware(
//	    middlewares.CORS(),                 // First: handle preflight before other processing
//	    middlewares.RequestID(),            // Second: assign ID for all subsequent logging
//	    middlewares.Recover(),              // Third: catch panics from timeout and handlers
//	    middlewares.Timeout(5*time.Second), // Fourth: enforce timeout
//	)
package middlewares
