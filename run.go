package framework

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dfiliuk-tech/hw-2/internal"
)

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the graceful shutdown deadline. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server starts listening.
// A failing hook aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a function run after the server stops.
// Hooks run in reverse registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// WithReadinessCheck adds a named check to the readiness endpoint.
func WithReadinessCheck(name string, fn CheckFunc) RunOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) RunOption {
	return internal.WithMetricsHandler(h)
}

// WithHTTPMiddleware wraps the outer HTTP mux, e.g. with request metrics.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) RunOption {
	return internal.WithHTTPMiddleware(mw...)
}
