package internal

import (
	"context"
	"log/slog"
	"strings"
)

// Option configures the application.
type Option func(*App)

// WithRouter sets the route table. Without it the app starts with an empty
// router over an empty registry.
func WithRouter(r *Router) Option {
	return func(a *App) {
		if r != nil {
			a.router = r
		}
	}
}

// WithRoutes registers route specs on the router when the app is built.
// Specs that name unknown handlers make New fail.
//
// Example:
//
//	specs, err := framework.LoadRoutes(bytes.NewReader(routesYAML))
//	app, err := framework.New(
//	    framework.WithRouter(router),
//	    framework.WithRoutes(specs...),
//	)
func WithRoutes(specs ...RouteSpec) Option {
	return func(a *App) {
		a.routeSpecs = append(a.routeSpecs, specs...)
	}
}

// WithSecurity enables the session, authentication and header layer.
// Without it every route is reachable anonymously.
func WithSecurity(s *Security) Option {
	return func(a *App) {
		a.security = s
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithVerboseErrors controls whether 500 responses carry the failure
// message. Enabled by default; disable it in production.
func WithVerboseErrors(verbose bool) Option {
	return func(a *App) {
		a.verboseErrors = verbose
	}
}

// WithLoginPath sets where unauthenticated requests are redirected.
// Defaults to "/login".
func WithLoginPath(path string) Option {
	return func(a *App) {
		if strings.HasPrefix(path, "/") {
			a.loginPath = normalizePath(path)
		}
	}
}

// WithMiddleware adds pipeline middleware. Middleware runs inside the
// session context, around authentication and dispatch, in the order
// provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithRouteObserver registers a callback invoked with every matched route
// before dispatch.
//
// Example:
//
//	framework.WithRouteObserver(func(ctx context.Context, r framework.Route) {
//	    metrics.SetRoute(ctx, r.Pattern())
//	})
func WithRouteObserver(fn func(ctx context.Context, route Route)) Option {
	return func(a *App) {
		a.routeObserver = fn
	}
}

// WithMaxBodySize limits request bodies read by ServeHTTP.
// Defaults to 10MB.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.maxBodySize = n
		}
	}
}
