package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret required")
	ErrBadSig   = errors.New("cookie: invalid signature")
	ErrInvalid  = errors.New("cookie: invalid cookie")
)

// Manager reads cookies from server requests and writes Set-Cookie headers
// onto responses with shared attribute defaults.
type Manager struct {
	secret   []byte // nil = signing disabled
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the signing secret. Secrets shorter than 32 bytes are
// ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Signed reports whether a secret is configured.
func (m *Manager) Signed() bool {
	return m.secret != nil
}

// Get returns a plain cookie value.
func (m *Manager) Get(req *httpmsg.ServerRequest, name string) (string, error) {
	v, ok := req.Cookie(name)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set returns resp with a Set-Cookie header for a plain cookie.
func (m *Manager) Set(resp *httpmsg.Response, name, value string, maxAge int) (*httpmsg.Response, error) {
	return m.write(resp, m.cookie(name, value, maxAge))
}

// Delete returns resp with a Set-Cookie header expiring name.
func (m *Manager) Delete(resp *httpmsg.Response, name string) (*httpmsg.Response, error) {
	return m.write(resp, m.cookie(name, "", -1))
}

// GetSigned returns the value of a signed cookie.
func (m *Manager) GetSigned(req *httpmsg.ServerRequest, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(req, name)
	if err != nil {
		return "", err
	}
	return m.Verify(raw)
}

// SetSigned returns resp with a Set-Cookie header for a signed cookie.
func (m *Manager) SetSigned(resp *httpmsg.Response, name, value string, maxAge int) (*httpmsg.Response, error) {
	signed, err := m.Sign(value)
	if err != nil {
		return nil, err
	}
	return m.write(resp, m.cookie(name, signed, maxAge))
}

// Sign encodes value as base64(value).base64(hmac-sha256).
func (m *Manager) Sign(value string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))

	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify decodes a value produced by Sign.
func (m *Manager) Verify(raw string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func (m *Manager) write(resp *httpmsg.Response, c *http.Cookie) (*httpmsg.Response, error) {
	if err := c.Valid(); err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	return resp.WithAddedHeader("Set-Cookie", c.String())
}

// cookie creates a cookie with the manager's defaults.
func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

// Parse splits a Cookie header line into name/value pairs. Later duplicates
// do not override earlier ones.
func Parse(line string) map[string]string {
	out := make(map[string]string)
	cookies, err := http.ParseCookie(line)
	if err != nil {
		// Fall back to the lenient parser used for request headers.
		req := http.Request{Header: http.Header{"Cookie": {line}}}
		for _, c := range req.Cookies() {
			if _, seen := out[c.Name]; !seen {
				out[c.Name] = c.Value
			}
		}
		return out
	}
	for _, c := range cookies {
		if _, seen := out[c.Name]; !seen {
			out[c.Name] = c.Value
		}
	}
	return out
}
