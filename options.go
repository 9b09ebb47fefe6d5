package framework

import (
	"context"
	"log/slog"
	"time"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/cookie"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// App options

// WithRouter sets the route table.
func WithRouter(r *Router) Option {
	return internal.WithRouter(r)
}

// WithRoutes registers route specs on the router when the app is built.
// Specs naming unknown handlers make New fail.
func WithRoutes(specs ...RouteSpec) Option {
	return internal.WithRoutes(specs...)
}

// WithSecurity enables sessions, authentication and security headers.
func WithSecurity(s *Security) Option {
	return internal.WithSecurity(s)
}

// WithLogger sets the application logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithVerboseErrors controls whether 500 pages include the error message.
// Defaults to true.
func WithVerboseErrors(verbose bool) Option {
	return internal.WithVerboseErrors(verbose)
}

// WithLoginPath sets where anonymous users are redirected.
// Defaults to "/login".
func WithLoginPath(path string) Option {
	return internal.WithLoginPath(path)
}

// WithMiddleware adds pipeline middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithRouteObserver registers a callback invoked with every matched route.
func WithRouteObserver(fn func(ctx context.Context, route Route)) Option {
	return internal.WithRouteObserver(fn)
}

// WithMaxBodySize limits request bodies read by ServeHTTP.
func WithMaxBodySize(n int64) Option {
	return internal.WithMaxBodySize(n)
}

// Security options

// WithCSRFProtection enables or disables CSRF token validation.
func WithCSRFProtection(enabled bool) SecurityOption {
	return internal.WithCSRFProtection(enabled)
}

// WithCSRFTokenName sets the session key and form field of the CSRF token.
func WithCSRFTokenName(name string) SecurityOption {
	return internal.WithCSRFTokenName(name)
}

// WithCSRFTokenTTL sets how long a generated CSRF token is valid.
func WithCSRFTokenTTL(ttl time.Duration) SecurityOption {
	return internal.WithCSRFTokenTTL(ttl)
}

// WithSecureHeaders enables or disables the security response headers.
func WithSecureHeaders(enabled bool) SecurityOption {
	return internal.WithSecureHeaders(enabled)
}

// WithPublicRoutes sets the paths reachable without a principal.
func WithPublicRoutes(paths ...string) SecurityOption {
	return internal.WithPublicRoutes(paths...)
}

// WithContentSecurityPolicy overrides the Content-Security-Policy header.
func WithContentSecurityPolicy(policy string) SecurityOption {
	return internal.WithContentSecurityPolicy(policy)
}

// WithReferrerPolicy overrides the Referrer-Policy header.
func WithReferrerPolicy(policy string) SecurityOption {
	return internal.WithReferrerPolicy(policy)
}

// WithHSTS overrides the Strict-Transport-Security header sent on secure requests.
func WithHSTS(value string) SecurityOption {
	return internal.WithHSTS(value)
}

// WithClock sets the time source used for CSRF expiry.
func WithClock(now func() time.Time) SecurityOption {
	return internal.WithClock(now)
}

// WithSecurityLogger sets the security layer logger.
func WithSecurityLogger(l *slog.Logger) SecurityOption {
	return internal.WithSecurityLogger(l)
}

// Session options

// WithSessionCookieName sets the session cookie name. Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionTTL sets the session lifetime. Defaults to 24 hours.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return internal.WithSessionTTL(ttl)
}

// WithSessionCookies sets the cookie manager. A manager with a secret signs
// the session cookie.
func WithSessionCookies(m *cookie.Manager) SessionOption {
	return internal.WithSessionCookies(m)
}

// WithSessionLogger sets the session manager logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return internal.WithSessionLogger(l)
}

// WithSessionClock sets the time source used for session expiry.
func WithSessionClock(now func() time.Time) SessionOption {
	return internal.WithSessionClock(now)
}

// WithSessionCreatedHook registers a callback for every new session.
func WithSessionCreatedHook(fn func(ctx context.Context, s *session.Session)) SessionOption {
	return internal.WithSessionCreatedHook(fn)
}
