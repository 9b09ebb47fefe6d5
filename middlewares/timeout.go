package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutLogger sets the logger for timeout warnings.
func WithTimeoutLogger(l *slog.Logger) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// Timeout returns middleware that gives the rest of the pipeline a deadline.
// The pipeline runs on the calling goroutine, so the session and request are
// never touched after Timeout returns. When the deadline passes, whatever the
// pipeline returned is discarded and a 504 *internal.HTTPError wrapping a
// *TimeoutError is returned instead.
//
// Actions must watch ctx.Done() in long operations: the 504 is produced only
// once they return.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := &TimeoutConfig{
		Logger:  logger.NewNope(),
		Timeout: timeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.NextFunc) internal.NextFunc {
		return func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
			tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			resp, err := next(tctx, req)

			switch {
			case ctx.Err() != nil:
				return nil, ctx.Err()
			case errors.Is(tctx.Err(), context.DeadlineExceeded):
				cfg.Logger.WarnContext(ctx, "request timeout",
					slog.String("timeout", cfg.Timeout.String()),
					slog.String("path", req.URI().Path()),
				)
				return nil, &internal.HTTPError{
					Code:    http.StatusGatewayTimeout,
					Message: "Request timed out",
					Err:     &TimeoutError{Duration: cfg.Timeout},
				}
			}
			return resp, err
		}
	}
}
