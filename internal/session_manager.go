package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dfiliuk-tech/hw-2/pkg/cookie"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionTTL        = 24 * time.Hour
)

// SessionManager loads sessions from the session cookie and persists them
// after each request.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	now        func() time.Time
	onCreate   func(ctx context.Context, s *session.Session)
	cookieName string
	ttl        time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookies:    cookie.New(),
		logger:     logger.NewNope(),
		now:        time.Now,
		cookieName: defaultSessionCookieName,
		ttl:        defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets the session lifetime and cookie Max-Age.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if ttl > 0 {
			sm.ttl = ttl
		}
	}
}

// WithSessionCookies sets the cookie manager. A manager with a secret signs
// the session token.
func WithSessionCookies(m *cookie.Manager) SessionOption {
	return func(sm *SessionManager) {
		if m != nil {
			sm.cookies = m
		}
	}
}

// WithSessionLogger sets the logger for session events.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(sm *SessionManager) {
		if l != nil {
			sm.logger = l
		}
	}
}

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(sm *SessionManager) {
		if now != nil {
			sm.now = now
		}
	}
}

// WithSessionCreatedHook is called for every newly started session.
func WithSessionCreatedHook(fn func(ctx context.Context, s *session.Session)) SessionOption {
	return func(sm *SessionManager) {
		sm.onCreate = fn
	}
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// Load returns the session named by the request cookie, or a new unsaved
// session when there is none, the token is unknown, expired or carries a
// bad signature.
func (sm *SessionManager) Load(ctx context.Context, req *httpmsg.ServerRequest) (*session.Session, error) {
	if token, ok := sm.token(ctx, req); ok {
		sess, err := sm.store.Get(ctx, token)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrCorrupted):
			sm.logger.DebugContext(ctx, "session cookie discarded", slog.String("reason", err.Error()))
		default:
			return nil, err
		}
	}
	return sm.create(ctx, req)
}

func (sm *SessionManager) token(ctx context.Context, req *httpmsg.ServerRequest) (string, bool) {
	raw, ok := req.Cookie(sm.cookieName)
	if !ok || raw == "" {
		return "", false
	}
	if !sm.cookies.Signed() {
		return raw, true
	}
	token, err := sm.cookies.Verify(raw)
	if err != nil {
		sm.logger.WarnContext(ctx, "session cookie signature mismatch")
		return "", false
	}
	return token, true
}

func (sm *SessionManager) create(ctx context.Context, req *httpmsg.ServerRequest) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	sess := session.New(uuid.NewString(), token, sm.now().Add(sm.ttl))
	sess.IP = req.ServerParam("REMOTE_ADDR")
	sess.UserAgent = req.HeaderLine("User-Agent")
	return sess, nil
}

// Commit persists sess and reports whether the cookie must be (re)issued:
// new sessions are created in the store, rotated sessions get a fresh token
// and dirty sessions are updated.
func (sm *SessionManager) Commit(ctx context.Context, sess *session.Session) (bool, error) {
	now := sm.now()
	sess.LastActiveAt = now

	if sess.IsNew() {
		if sess.NeedsRotation() {
			if err := sm.rotate(sess); err != nil {
				return false, err
			}
		}
		if err := sm.store.Create(ctx, sess); err != nil {
			return false, err
		}
		sess.ClearNew()
		sess.ClearDirty()
		if sm.onCreate != nil {
			sm.onCreate(ctx, sess)
		}
		sm.logger.DebugContext(ctx, "session started", slog.String("session_id", sess.ID))
		return true, nil
	}

	if sess.NeedsRotation() {
		old := sess.Token
		if err := sm.rotate(sess); err != nil {
			return false, err
		}
		sess.ExpiresAt = now.Add(sm.ttl)
		if err := sm.store.Update(ctx, sess); err != nil {
			sess.Token = old
			return false, err
		}
		sess.ClearDirty()
		sm.logger.DebugContext(ctx, "session token rotated", slog.String("session_id", sess.ID))
		return true, nil
	}

	if sess.IsDirty() {
		if err := sm.store.Update(ctx, sess); err != nil {
			return false, err
		}
		sess.ClearDirty()
	}
	return false, nil
}

func (sm *SessionManager) rotate(sess *session.Session) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = token
	sess.ClearRotation()
	sess.MarkDirty()
	return nil
}

// WriteCookie adds the session cookie to resp.
func (sm *SessionManager) WriteCookie(resp *httpmsg.Response, sess *session.Session) (*httpmsg.Response, error) {
	maxAge := int(sess.ExpiresAt.Sub(sm.now()).Seconds())
	if maxAge <= 0 {
		return sm.cookies.Delete(resp, sm.cookieName)
	}
	if sm.cookies.Signed() {
		return sm.cookies.SetSigned(resp, sm.cookieName, sess.Token, maxAge)
	}
	return sm.cookies.Set(resp, sm.cookieName, sess.Token, maxAge)
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
