package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	logger          *slog.Logger
	baseCtx         context.Context
	metricsHandler  http.Handler
	checks          healthChecks
	httpMiddlewares []func(http.Handler) http.Handler
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// buildRunConfig creates a runConfig from the provided options.
func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		checks:          make(healthChecks),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the runtime logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function to run before the server accepts
// connections. A failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in reverse registration order, so resources opened
// first are released last.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	framework.ShutdownHook(db.Shutdown(conn))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithReadinessCheck adds a named check to GET /health/ready.
// Checks run in parallel during the readiness probe.
//
// Example:
//
//	framework.WithReadinessCheck("db", db.Healthcheck(conn))
func WithReadinessCheck(name string, fn CheckFunc) RunOption {
	return func(c *runConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) RunOption {
	return func(c *runConfig) {
		c.metricsHandler = h
	}
}

// WithHTTPMiddleware adds net/http middleware around every outer route,
// health and metrics included. Applied in the order provided.
//
// Example:
//
//	framework.WithHTTPMiddleware(middleware.RealIP, metrics.Middleware)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) RunOption {
	return func(c *runConfig) {
		c.httpMiddlewares = append(c.httpMiddlewares, mw...)
	}
}
