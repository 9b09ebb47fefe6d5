package httpmsg

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// URI is an immutable URI reference. The zero value is the empty URI.
// URI values are comparable with ==.
type URI struct {
	scheme   string
	userInfo string
	host     string
	port     int
	path     string
	query    string
	fragment string
}

// ParseURI parses s into its components.
func ParseURI(s string) (URI, error) {
	if s == "" {
		return URI{}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	out := URI{
		scheme:   strings.ToLower(u.Scheme),
		host:     strings.ToLower(u.Hostname()),
		query:    u.RawQuery,
		fragment: u.EscapedFragment(),
	}

	if u.Opaque != "" {
		out.path = u.Opaque
	} else {
		out.path = u.EscapedPath()
	}

	if u.User != nil {
		out.userInfo = u.User.String()
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || !validPort(port) {
			return URI{}, fmt.Errorf("%w: port %q", ErrInvalidURI, p)
		}
		out.port = port
	}

	return out, nil
}

// MustParseURI is like ParseURI but panics on error. Use it for constants.
func MustParseURI(s string) URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

func (u URI) Scheme() string   { return u.scheme }
func (u URI) UserInfo() string { return u.userInfo }
func (u URI) Host() string     { return u.host }
func (u URI) Path() string     { return u.path }
func (u URI) Query() string    { return u.query }
func (u URI) Fragment() string { return u.fragment }

// Port returns the explicit port, if any.
func (u URI) Port() (int, bool) {
	return u.port, u.port != 0
}

// Authority returns [user-info@]host[:port], or "" when the host is empty.
func (u URI) Authority() string {
	if u.host == "" {
		return ""
	}
	var b strings.Builder
	if u.userInfo != "" {
		b.WriteString(u.userInfo)
		b.WriteByte('@')
	}
	if strings.Contains(u.host, ":") {
		b.WriteByte('[')
		b.WriteString(u.host)
		b.WriteByte(']')
	} else {
		b.WriteString(u.host)
	}
	if u.port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.port))
	}
	return b.String()
}

// Equal reports whether both URIs have identical components.
func (u URI) Equal(other URI) bool {
	return u == other
}

// WithScheme returns a copy with the scheme replaced. The scheme is lower-cased.
func (u URI) WithScheme(scheme string) (URI, error) {
	scheme = strings.ToLower(scheme)
	for i, r := range scheme {
		alpha := r >= 'a' && r <= 'z'
		if alpha || (i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.')) {
			continue
		}
		return u, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}
	u.scheme = scheme
	return u, nil
}

// WithUserInfo returns a copy with user information replaced. An empty user
// clears it; the password is only kept with a non-empty user.
func (u URI) WithUserInfo(user, password string) URI {
	u.userInfo = user
	if user != "" && password != "" {
		u.userInfo += ":" + password
	}
	return u
}

// WithHost returns a copy with the host replaced. The host is lower-cased.
func (u URI) WithHost(host string) URI {
	u.host = strings.ToLower(host)
	return u
}

// WithPort returns a copy with the port replaced.
func (u URI) WithPort(port int) (URI, error) {
	if !validPort(port) {
		return u, fmt.Errorf("%w: got %d", ErrInvalidPort, port)
	}
	u.port = port
	return u, nil
}

// WithoutPort returns a copy without an explicit port.
func (u URI) WithoutPort() URI {
	u.port = 0
	return u
}

// WithPath returns a copy with the path replaced.
func (u URI) WithPath(path string) (URI, error) {
	if strings.ContainsAny(path, "?#") {
		return u, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	u.path = path
	return u, nil
}

// WithQuery returns a copy with the query replaced. A single leading '?' is
// stripped.
func (u URI) WithQuery(query string) (URI, error) {
	query = strings.TrimPrefix(query, "?")
	if strings.ContainsRune(query, '#') || hasControl(query) {
		return u, fmt.Errorf("%w: %q", ErrInvalidQuery, query)
	}
	u.query = query
	return u, nil
}

// WithFragment returns a copy with the fragment replaced. A single leading
// '#' is stripped.
func (u URI) WithFragment(fragment string) (URI, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if hasControl(fragment) {
		return u, fmt.Errorf("%w: %q", ErrInvalidFragment, fragment)
	}
	u.fragment = fragment
	return u, nil
}

func hasControl(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r < 0x20 || r == 0x7f
	})
}

// String serializes the URI. The authority is emitted only with a non-empty
// host, in which case a relative path is prefixed with '/'.
func (u URI) String() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}

	// A path starting with "//" keeps an empty authority so it does not
	// re-parse as a host.
	authority := u.Authority()
	path := u.path
	if authority != "" || strings.HasPrefix(path, "//") {
		b.WriteString("//")
		b.WriteString(authority)
	}

	if authority != "" && path != "" && path[0] != '/' {
		path = "/" + path
	}
	b.WriteString(path)

	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}
