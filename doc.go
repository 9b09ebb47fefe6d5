// Package framework provides a request-lifecycle engine for server-side web
// applications in Go.
//
// A request flows through a fixed pipeline: the security layer loads the
// session, the principal is authenticated (anonymous users are redirected to
// the login page unless the route is public), the router matches the exact
// method and path, the controller action runs, and its result is wrapped
// into a response. Errors never escape: route misses become 404 pages,
// HTTPErrors render their own status and everything else becomes a 500.
//
// # Quick Start
//
// Register controllers, declare routes and build the app:
//
//	registry := framework.NewRegistry()
//	registry.Register("home", framework.ActionMap{
//	    "index": func(ctx context.Context, req *framework.ServerRequest) (any, error) {
//	        return "Welcome", nil
//	    },
//	})
//
//	router := framework.NewRouter(registry)
//	if err := router.Add(http.MethodGet, "/", framework.Descriptor{Controller: "home", Action: "index"}); err != nil {
//	    return err
//	}
//
//	app, err := framework.New(framework.WithRouter(router))
//	if err != nil {
//	    return err
//	}
//	return app.Run(":8080", framework.Logger(log))
//
// # Actions
//
// Actions return any value. A *Response passes through, a string becomes a
// text/html page, maps, slices and structs are encoded as JSON, and
// anything else produces 204 No Content.
//
// # Route tables
//
// Routes may also be loaded from YAML:
//
//	# routes.yaml
//	- {method: GET, path: /, controller: home, action: index}
//	- {method: POST, path: /login, controller: auth, action: login}
//
//	specs, err := framework.LoadRoutes(f)
//	app, err := framework.New(framework.WithRouter(router), framework.WithRoutes(specs...))
//
// # Security
//
// NewSecurity combines an AuthProvider with a SessionManager. It keeps the
// session in the request context, issues the session cookie, validates CSRF
// tokens and adds security headers to every response:
//
//	sessions := framework.NewSessionManager(session.NewMemoryStore())
//	security := framework.NewSecurity(provider, sessions)
//	app, err := framework.New(framework.WithRouter(router), framework.WithSecurity(security))
//
// # Middleware
//
// Middleware wraps the pipeline inside the session context. See the
// middlewares package for request IDs, panic recovery, timeouts and CORS.
//
// # Running
//
// App implements http.Handler. Run serves it behind an outer mux that adds
// liveness and readiness probes, an optional /metrics endpoint and graceful
// shutdown on SIGINT or SIGTERM.
package framework
