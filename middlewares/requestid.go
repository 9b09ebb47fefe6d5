package middlewares

import (
	"context"

	"github.com/google/uuid"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// RequestIDAttribute is the request attribute holding the request ID.
const RequestIDAttribute = "request_id"

// maxRequestIDLength bounds IDs accepted from upstream headers.
const maxRequestIDLength = 128

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that assigns a unique request ID to each request.
// The ID is taken from request headers (if present) or generated as a UUID.
// It is stored in the context and the request attributes and echoed as a
// response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.NextFunc) internal.NextFunc {
		return func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
			// Check headers in priority order; first match is used to preserve upstream tracing IDs
			var reqID string
			for _, header := range cfg.Headers {
				if v := req.HeaderLine(header); v != "" && len(v) <= maxRequestIDLength {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			ctx = context.WithValue(ctx, requestIDKey{}, reqID)
			resp, err := next(ctx, req.WithAttribute(RequestIDAttribute, reqID))
			if err != nil || resp == nil || cfg.ResponseHeader == "" {
				return resp, err
			}
			return resp.WithHeader(cfg.ResponseHeader, reqID)
		}
	}
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for use with logger.New.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("request_id", GetRequestID)
}
