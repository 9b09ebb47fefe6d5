package internal

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"html"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// UserAttribute is the request attribute holding the authenticated *auth.User.
const UserAttribute = "user"

// Default security policy.
const (
	defaultCSRFTokenName         = "csrf_token"
	defaultCSRFTokenTTL          = time.Hour
	defaultContentSecurityPolicy = "default-src 'self'; script-src 'self'; object-src 'none'"
	defaultReferrerPolicy        = "no-referrer-when-downgrade"
	defaultHSTS                  = "max-age=31536000; includeSubDomains"
)

var defaultPublicRoutes = []string{"/login", "/logout"}

// Security gates requests behind authentication, issues and checks CSRF
// tokens and applies the response header policy.
type Security struct {
	auth          auth.Provider
	sessions      *SessionManager
	logger        *slog.Logger
	now           func() time.Time
	sanitizer     *bluemonday.Policy
	publicRoutes  map[string]struct{}
	csrfTokenName string
	csp           string
	referrer      string
	hsts          string
	csrfTTL       time.Duration
	csrfEnabled   bool
	secureHeaders bool
}

// SecurityOption configures Security.
type SecurityOption func(*Security)

// WithCSRFProtection toggles CSRF validation. When disabled every candidate
// validates.
func WithCSRFProtection(enabled bool) SecurityOption {
	return func(s *Security) {
		s.csrfEnabled = enabled
	}
}

// WithCSRFTokenName sets the session key and form field of the CSRF token.
func WithCSRFTokenName(name string) SecurityOption {
	return func(s *Security) {
		if name != "" {
			s.csrfTokenName = name
		}
	}
}

// WithCSRFTokenTTL sets how long an issued token stays valid.
func WithCSRFTokenTTL(ttl time.Duration) SecurityOption {
	return func(s *Security) {
		if ttl > 0 {
			s.csrfTTL = ttl
		}
	}
}

// WithSecureHeaders toggles the response header policy.
func WithSecureHeaders(enabled bool) SecurityOption {
	return func(s *Security) {
		s.secureHeaders = enabled
	}
}

// WithPublicRoutes replaces the paths reachable without a principal.
func WithPublicRoutes(paths ...string) SecurityOption {
	return func(s *Security) {
		s.publicRoutes = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			s.publicRoutes[normalizePath(p)] = struct{}{}
		}
	}
}

// WithContentSecurityPolicy overrides the Content-Security-Policy value.
func WithContentSecurityPolicy(policy string) SecurityOption {
	return func(s *Security) {
		if policy != "" {
			s.csp = policy
		}
	}
}

// WithReferrerPolicy overrides the Referrer-Policy value.
func WithReferrerPolicy(policy string) SecurityOption {
	return func(s *Security) {
		if policy != "" {
			s.referrer = policy
		}
	}
}

// WithHSTS overrides the Strict-Transport-Security value sent on secure
// connections.
func WithHSTS(value string) SecurityOption {
	return func(s *Security) {
		if value != "" {
			s.hsts = value
		}
	}
}

// WithClock overrides the time source used for CSRF expiry.
func WithClock(now func() time.Time) SecurityOption {
	return func(s *Security) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSecurityLogger sets the logger.
func WithSecurityLogger(l *slog.Logger) SecurityOption {
	return func(s *Security) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSecurity creates the security middleware.
func NewSecurity(provider auth.Provider, sessions *SessionManager, opts ...SecurityOption) *Security {
	s := &Security{
		auth:          provider,
		sessions:      sessions,
		logger:        logger.NewNope(),
		now:           time.Now,
		sanitizer:     bluemonday.StrictPolicy(),
		csrfTokenName: defaultCSRFTokenName,
		csp:           defaultContentSecurityPolicy,
		referrer:      defaultReferrerPolicy,
		hsts:          defaultHSTS,
		csrfTTL:       defaultCSRFTokenTTL,
		csrfEnabled:   true,
		secureHeaders: true,
	}
	WithPublicRoutes(defaultPublicRoutes...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the authentication provider.
func (s *Security) Provider() auth.Provider {
	return s.auth
}

// CSRFTokenName returns the configured token name.
func (s *Security) CSRFTokenName() string {
	return s.csrfTokenName
}

// Process runs next inside a session context. The session is loaded (or
// started) before next and persisted after it, also when next fails. The
// session cookie and header policy are applied to successful responses
// only; failures are returned untouched for the caller to render.
func (s *Security) Process(ctx context.Context, req *httpmsg.ServerRequest, next NextFunc) (*httpmsg.Response, error) {
	sess, err := s.sessions.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	ctx = session.WithContext(ctx, sess)

	resp, err := next(ctx, req)

	issue, commitErr := s.sessions.Commit(ctx, sess)
	if err != nil {
		if commitErr != nil {
			s.logger.ErrorContext(ctx, "session commit failed", slog.Any("error", commitErr))
		}
		return nil, err
	}
	if commitErr != nil {
		return nil, commitErr
	}

	if issue {
		if resp, err = s.sessions.WriteCookie(resp, sess); err != nil {
			return nil, err
		}
	}
	return s.ApplyHeaders(req, resp)
}

// ApplyHeaders sets the response security headers. Strict-Transport-Security
// is only sent for secure requests.
func (s *Security) ApplyHeaders(req *httpmsg.ServerRequest, resp *httpmsg.Response) (*httpmsg.Response, error) {
	if !s.secureHeaders {
		return resp, nil
	}

	headers := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-XSS-Protection", "1; mode=block"},
		{"X-Frame-Options", "DENY"},
		{"Content-Security-Policy", s.csp},
		{"Referrer-Policy", s.referrer},
	}
	if req.IsSecure() {
		headers = append(headers, [2]string{"Strict-Transport-Security", s.hsts})
	}

	var err error
	for _, h := range headers {
		if resp, err = resp.WithHeader(h[0], h[1]); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// IsPublic reports whether path is reachable without a principal.
func (s *Security) IsPublic(path string) bool {
	_, ok := s.publicRoutes[normalizePath(path)]
	return ok
}

// Authenticate returns req unchanged for public routes. Otherwise it
// resolves the session's principal and returns req with the user attribute
// set, or nil when nobody is logged in.
func (s *Security) Authenticate(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.ServerRequest, error) {
	if s.IsPublic(req.URI().Path()) {
		return req, nil
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return req.WithAttribute(UserAttribute, user), nil
}

// VerifyAuthorization reports whether the request's principal holds at
// least one of roles. Without a principal it is always false; with one and
// no roles required it is always true.
func (s *Security) VerifyAuthorization(_ context.Context, req *httpmsg.ServerRequest, roles ...string) bool {
	user := CurrentUser(req)
	if user == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	return s.auth.HasRole(user, roles...)
}

// CurrentUser returns the principal attached by Authenticate, or nil.
func CurrentUser(req *httpmsg.ServerRequest) *auth.User {
	u, _ := req.Attribute(UserAttribute, nil).(*auth.User)
	return u
}

// GenerateCSRFToken stores a fresh 256-bit token in the context session and
// returns it hex encoded.
func (s *Security) GenerateCSRFToken(ctx context.Context) (string, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return "", ErrNoSession
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(errors.New("generate csrf token"), err)
	}
	token := hex.EncodeToString(b)
	sess.SetCSRF(s.csrfTokenName, token, s.now().Add(s.csrfTTL))
	return token, nil
}

// ValidateCSRFToken compares candidate with the stored token in constant
// time. It fails without a stored token or once the token expired.
func (s *Security) ValidateCSRFToken(ctx context.Context, candidate string) bool {
	if !s.csrfEnabled {
		return true
	}
	sess := session.FromContext(ctx)
	if sess == nil {
		return false
	}
	stored, ok := sess.CSRFToken(s.csrfTokenName)
	if !ok {
		s.logger.DebugContext(ctx, "csrf token missing from session")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(candidate)) != 1 {
		return false
	}
	return s.now().Before(stored.ExpiresAt)
}

// EscapeOutput HTML-encodes <, >, &, ' and " for embedding in markup.
func (s *Security) EscapeOutput(text string) string {
	return html.EscapeString(text)
}

// StripTags removes all markup from text, leaving escaped plain text.
func (s *Security) StripTags(text string) string {
	return s.sanitizer.Sanitize(text)
}
