package session

import (
	"errors"
	"maps"
	"time"
)

const flashPrefix = "_flash."

// CSRFToken is an issued anti-forgery token and the moment it stops being
// accepted.
type CSRFToken struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
}

// Session is the server-side state of one client: an optional authenticated
// principal, CSRF tokens keyed by name, and arbitrary values.
type Session struct {
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`

	UserID    *string              `json:"user_id,omitempty"` // nil = anonymous session
	Values    map[string]any       `json:"values,omitempty"`
	CSRF      map[string]CSRFToken `json:"csrf,omitempty"`
	ID        string               `json:"id"`    // Stable identifier
	Token     string               `json:"token"` // Cookie token, rotated on privilege change
	IP        string               `json:"ip,omitempty"`
	UserAgent string               `json:"user_agent,omitempty"`

	dirty  bool
	isNew  bool
	rotate bool
}

// New creates a session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CSRF:         make(map[string]CSRFToken),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// Clone returns a deep copy of the session maps. Flags are copied as is.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	c.CSRF = maps.Clone(s.CSRF)
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	return &c
}

// IsAuthenticated returns true if the session has an associated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// Authenticate binds the session to userID and requests a token rotation.
func (s *Session) Authenticate(userID string) {
	s.UserID = &userID
	s.rotate = true
	s.dirty = true
}

// Logout drops the principal and every CSRF token, and requests a token
// rotation.
func (s *Session) Logout() {
	s.UserID = nil
	clear(s.CSRF)
	s.rotate = true
	s.dirty = true
}

// SetValue stores a value in the session.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value from the session.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value. The session becomes dirty only if the key
// existed.
func (s *Session) DeleteValue(key string) {
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Flash stores a message that is read once with TakeFlash.
func (s *Session) Flash(key, message string) {
	s.SetValue(flashPrefix+key, message)
}

// TakeFlash returns and removes a flash message.
func (s *Session) TakeFlash(key string) (string, bool) {
	v, ok := s.GetValue(flashPrefix + key)
	if !ok {
		return "", false
	}
	s.DeleteValue(flashPrefix + key)
	msg, ok := v.(string)
	return msg, ok
}

// SetCSRF records a CSRF token under name, replacing any previous one.
func (s *Session) SetCSRF(name, token string, expiresAt time.Time) {
	if s.CSRF == nil {
		s.CSRF = make(map[string]CSRFToken)
	}
	s.CSRF[name] = CSRFToken{Token: token, ExpiresAt: expiresAt}
	s.dirty = true
}

// CSRFToken returns the token recorded under name.
func (s *Session) CSRFToken(name string) (CSRFToken, bool) {
	t, ok := s.CSRF[name]
	return t, ok
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() { s.dirty = false }

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() { s.dirty = true }

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool { return s.isNew }

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() { s.isNew = false }

// NeedsRotation reports whether the cookie token must be replaced before
// the session is saved.
func (s *Session) NeedsRotation() bool { return s.rotate }

// ClearRotation is called once a new token has been issued.
func (s *Session) ClearRotation() { s.rotate = false }

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value is a typed helper to retrieve session values.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}

	return typed, nil
}

// ValueOr returns defaultVal when the key is missing or has another type.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
