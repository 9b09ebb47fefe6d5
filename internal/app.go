package internal

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

const (
	defaultLoginPath = "/login"

	loginErrorFlash     = "login_error"
	loginErrorAttribute = "error"
)

// App drives a request through the lifecycle:
// security wrap, authenticate, route match, dispatch, wrap result, respond.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router        *Router
	security      *Security
	logger        *slog.Logger
	routeObserver func(ctx context.Context, route Route)
	handler       NextFunc
	loginPath     string
	routeSpecs    []RouteSpec
	middlewares   []Middleware
	maxBodySize   int64
	verboseErrors bool
}

// New creates a new application with the given options.
//
// Example:
//
//	registry := framework.NewRegistry()
//	registry.Register("home", framework.ActionMap{"index": home})
//	app, err := framework.New(
//	    framework.WithRouter(framework.NewRouter(registry)),
//	    framework.WithRoutes(specs...),
//	    framework.WithSecurity(security),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		logger:        logger.NewNope(),
		loginPath:     defaultLoginPath,
		verboseErrors: true,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.router == nil {
		a.router = NewRouter(NewRegistry())
	}
	if len(a.routeSpecs) > 0 {
		if err := a.router.Load(a.routeSpecs); err != nil {
			return nil, fmt.Errorf("load routes: %w", err)
		}
	}

	a.handler = chain(a.serve, a.middlewares)
	return a, nil
}

// Router returns the route table.
func (a *App) Router() *Router {
	return a.router
}

// Security returns the security layer, nil when none is configured.
func (a *App) Security() *Security {
	return a.security
}

// Handle runs req through the full lifecycle and always produces a
// response. Failures become 404 or 500 responses (or the status of an
// *HTTPError).
func (a *App) Handle(ctx context.Context, req *httpmsg.ServerRequest) (resp *httpmsg.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = a.errorResponse(ctx, req, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	var err error
	if a.security != nil {
		resp, err = a.security.Process(ctx, req, a.handler)
	} else {
		resp, err = a.handler(ctx, req)
	}
	if err != nil {
		return a.errorResponse(ctx, req, err)
	}
	return resp
}

// serve is the innermost pipeline stage: authenticate, match, dispatch, wrap.
func (a *App) serve(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
	if a.security != nil {
		authed, err := a.security.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if authed == nil {
			a.logger.DebugContext(ctx, "authentication required, redirecting to login",
				slog.String("path", req.URI().Path()),
			)
			return a.redirect(a.loginPath)
		}
		req = authed
	}

	req = a.takeLoginFlash(ctx, req)

	route, err := a.router.Match(req)
	if err != nil {
		return nil, err
	}
	if a.routeObserver != nil {
		a.routeObserver(ctx, route)
	}

	result, err := a.dispatch(ctx, route, req)
	if err != nil {
		return nil, err
	}
	return WrapResult(result)
}

func (a *App) dispatch(ctx context.Context, route Route, req *httpmsg.ServerRequest) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return a.router.Dispatch(ctx, route, req)
}

// takeLoginFlash moves a pending login error into the request attributes
// when the login page is requested.
func (a *App) takeLoginFlash(ctx context.Context, req *httpmsg.ServerRequest) *httpmsg.ServerRequest {
	if normalizePath(req.URI().Path()) != a.loginPath {
		return req
	}
	sess := session.FromContext(ctx)
	if sess == nil {
		return req
	}
	if msg, ok := sess.TakeFlash(loginErrorFlash); ok {
		return req.WithAttribute(loginErrorAttribute, msg)
	}
	return req
}

func (a *App) redirect(location string) (*httpmsg.Response, error) {
	return httpmsg.NewResponse(http.StatusFound, httpmsg.WithHeaderValue("Location", location))
}

// errorResponse renders err as a text/html error page.
func (a *App) errorResponse(ctx context.Context, req *httpmsg.ServerRequest, err error) *httpmsg.Response {
	status, message := a.classify(ctx, req, err)

	body := fmt.Sprintf("%d %s", status, httpmsg.ReasonPhrase(status))
	if message != "" {
		body += ": " + html.EscapeString(message)
	}

	resp, rerr := httpmsg.NewResponse(status,
		httpmsg.WithHeaderValue("Content-Type", contentTypeHTML),
		httpmsg.WithBodyString(body),
	)
	if rerr != nil {
		// Only reachable with an out-of-range HTTPError code.
		resp, _ = httpmsg.NewResponse(http.StatusInternalServerError,
			httpmsg.WithHeaderValue("Content-Type", contentTypeHTML),
			httpmsg.WithBodyString("500 Internal Server Error"),
		)
	}

	if a.security != nil && req != nil {
		if secured, herr := a.security.ApplyHeaders(req, resp); herr == nil {
			resp = secured
		}
	}
	return resp
}

func (a *App) classify(ctx context.Context, req *httpmsg.ServerRequest, err error) (int, string) {
	attrs := requestAttrs(req)

	if IsRouteNotFound(err) {
		a.logger.DebugContext(ctx, "route not found", attrs...)
		return http.StatusNotFound, err.Error()
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		if httpErr.Code >= http.StatusInternalServerError {
			a.logger.ErrorContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
		} else {
			a.logger.InfoContext(ctx, "request rejected",
				append(attrs, slog.Int("status", httpErr.Code), slog.String("reason", httpErr.Message))...)
		}
		return httpErr.Code, httpErr.Message
	}

	attrs = append(attrs, slog.Any("error", err))
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, slog.String("stack", string(panicErr.Stack)))
	}
	a.logger.ErrorContext(ctx, "unhandled failure", attrs...)

	if a.verboseErrors {
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, ""
}

func requestAttrs(req *httpmsg.ServerRequest) []any {
	if req == nil {
		return nil
	}
	return []any{
		slog.String("method", req.Method()),
		slog.String("path", req.URI().Path()),
	}
}

// ServeHTTP adapts the App to net/http: the request is converted into a
// ServerRequest, handled, and the response written back.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := FromHTTPRequest(r, a.maxBodySize)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.logger.WarnContext(r.Context(), "malformed request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(status), status)
		return
	}

	resp := a.Handle(r.Context(), req)
	if err := WriteResponse(w, resp); err != nil {
		a.logger.WarnContext(r.Context(), "write response", slog.Any("error", err))
	}
}

// Run starts an HTTP server for the app and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", framework.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	return runServer(runtimeConfig{
		handler:         a.httpHandler(cfg),
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
