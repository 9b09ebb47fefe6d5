package middlewares

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger
	OnPanic           func(ctx context.Context, pe *PanicError)
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables capturing the stack trace.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger panics are reported to.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithRecoverHook registers a callback for every recovered panic,
// e.g. a metrics counter.
func WithRecoverHook(fn func(ctx context.Context, pe *PanicError)) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.OnPanic = fn
	}
}

// Recover returns middleware that recovers from panics further down the
// pipeline. The panic is logged and returned as a *PanicError, which the
// app renders as a 500 response.
// Request ID is automatically included via RequestIDExtractor() if configured.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		Logger:    logger.NewNope(),
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.NextFunc) internal.NextFunc {
		return func(ctx context.Context, req *httpmsg.ServerRequest) (resp *httpmsg.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack []byte
					// Allocate buffer only if stack traces are enabled to avoid unnecessary memory allocation
					if !cfg.DisablePrintStack {
						stack = make([]byte, cfg.StackSize)
						n := runtime.Stack(stack, false)
						stack = stack[:n]
					}

					attrs := []any{
						slog.Any("panic", r),
						slog.String("method", req.Method()),
						slog.String("path", req.URI().Path()),
					}
					if !cfg.DisablePrintStack {
						attrs = append(attrs, slog.String("stack", string(stack)))
					}
					cfg.Logger.ErrorContext(ctx, "panic recovered", attrs...)

					pe := &PanicError{Value: r, Stack: stack}
					if cfg.OnPanic != nil {
						cfg.OnPanic(ctx, pe)
					}
					resp, err = nil, pe
				}
			}()

			return next(ctx, req)
		}
	}
}
