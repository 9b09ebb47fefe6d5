package middlewares

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig provides sensible defaults for CORS.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a static list of allowed origins.
	// Use "*" to allow all origins (not recommended with credentials).
	AllowOrigins []string

	// AllowOriginFunc is a dynamic origin validator.
	// When set, it completely overrides AllowOrigins for that request.
	// Return true if the origin should be allowed.
	AllowOriginFunc func(origin string) bool

	// AllowMethods specifies the allowed HTTP methods.
	AllowMethods []string

	// AllowHeaders specifies the allowed request headers.
	AllowHeaders []string

	// ExposeHeaders specifies headers exposed to the client.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization headers) are allowed.
	// When true, Access-Control-Allow-Origin cannot be "*"; the actual origin is echoed.
	AllowCredentials bool

	// MaxAge specifies how long preflight responses can be cached.
	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
// When set, it completely overrides AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers exposed to the client.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
// When enabled, Access-Control-Allow-Origin echoes the actual origin instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
// Preflight (OPTIONS) requests are answered with 204 before routing and
// authentication; other responses get the CORS headers added.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &CORSConfig{
		AllowOrigins: DefaultCORSConfig.AllowOrigins,
		AllowMethods: DefaultCORSConfig.AllowMethods,
		AllowHeaders: DefaultCORSConfig.AllowHeaders,
		MaxAge:       DefaultCORSConfig.MaxAge,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// Pre-compute joined strings for headers
	allowMethodsStr := strings.Join(cfg.AllowMethods, ", ")
	allowHeadersStr := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeadersStr := strings.Join(cfg.ExposeHeaders, ", ")
	maxAgeStr := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	// Check if wildcard is in allow origins
	hasWildcard := slices.Contains(cfg.AllowOrigins, "*")

	return func(next internal.NextFunc) internal.NextFunc {
		return func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
			origin := req.HeaderLine("Origin")

			// Not a CORS request, or origin not allowed: continue without CORS headers (browser will block)
			if origin == "" || !isOriginAllowed(origin, cfg, hasWildcard) {
				return next(ctx, req)
			}

			var headers corsHeaders
			headers.add("Vary", "Origin")

			// When credentials are enabled or specific origins are configured, echo the actual origin
			if cfg.AllowCredentials || !hasWildcard {
				headers.set("Access-Control-Allow-Origin", origin)
			} else {
				headers.set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				headers.set("Access-Control-Allow-Credentials", "true")
			}
			if exposeHeadersStr != "" {
				headers.set("Access-Control-Expose-Headers", exposeHeadersStr)
			}

			if req.Method() == http.MethodOptions {
				headers.add("Vary", "Access-Control-Request-Method")
				headers.add("Vary", "Access-Control-Request-Headers")
				headers.set("Access-Control-Allow-Methods", allowMethodsStr)
				headers.set("Access-Control-Allow-Headers", allowHeadersStr)
				if cfg.MaxAge > 0 {
					headers.set("Access-Control-Max-Age", maxAgeStr)
				}

				resp, err := httpmsg.NewResponse(http.StatusNoContent)
				if err != nil {
					return nil, err
				}
				return headers.apply(resp)
			}

			resp, err := next(ctx, req)
			if err != nil || resp == nil {
				return resp, err
			}
			return headers.apply(resp)
		}
	}
}

// corsHeaders collects header writes so they can be applied to an
// immutable response in one pass.
type corsHeaders []corsHeader

type corsHeader struct {
	name, value string
	appendValue bool
}

func (h *corsHeaders) set(name, value string) {
	*h = append(*h, corsHeader{name: name, value: value})
}

func (h *corsHeaders) add(name, value string) {
	*h = append(*h, corsHeader{name: name, value: value, appendValue: true})
}

func (h corsHeaders) apply(resp *httpmsg.Response) (*httpmsg.Response, error) {
	var err error
	for _, hdr := range h {
		if hdr.appendValue {
			resp, err = resp.WithAddedHeader(hdr.name, hdr.value)
		} else {
			resp, err = resp.WithHeader(hdr.name, hdr.value)
		}
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// isOriginAllowed checks if the given origin is allowed based on configuration.
func isOriginAllowed(origin string, cfg *CORSConfig, hasWildcard bool) bool {
	// AllowOriginFunc completely overrides AllowOrigins when set
	if cfg.AllowOriginFunc != nil {
		return cfg.AllowOriginFunc(origin)
	}

	// Wildcard allows all
	if hasWildcard {
		return true
	}

	// Check static list
	return slices.Contains(cfg.AllowOrigins, origin)
}
