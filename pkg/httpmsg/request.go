package httpmsg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Request is an immutable outgoing or generic HTTP request.
type Request struct {
	message
	method string
	uri    URI
	target string
}

// NewRequest parses uri and builds a request. The method is upper-cased and
// a Host header is derived from the URI unless one is supplied.
func NewRequest(method, uri string, opts ...Option) (*Request, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return NewRequestWithURI(method, u, opts...)
}

// NewRequestWithURI is like NewRequest with an already parsed URI.
func NewRequestWithURI(method string, uri URI, opts ...Option) (*Request, error) {
	r, err := newRequest(method, uri, newConfig(opts))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func newRequest(method string, uri URI, c *config) (Request, error) {
	normalized, err := normalizeMethod(method)
	if err != nil {
		return Request{}, err
	}
	msg, err := c.build(newMessage())
	if err != nil {
		return Request{}, err
	}

	r := Request{message: msg, method: normalized, uri: uri}
	if !r.headers.has("Host") {
		r.message = r.message.withHostFrom(uri)
	}
	return r, nil
}

func normalizeMethod(method string) (string, error) {
	if !headerNamePattern.MatchString(method) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	return strings.ToUpper(method), nil
}

// withHostFrom sets Host from the URI authority, keeping it first in order.
// URIs without a host leave the headers untouched.
func (m message) withHostFrom(uri URI) message {
	host := uri.Host()
	if host == "" {
		return m
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port, ok := uri.Port(); ok {
		host += ":" + strconv.Itoa(port)
	}
	m.headers = m.headers.remove("Host").prepend("Host", []string{host})
	return m
}

// Method returns the upper-cased request method.
func (r *Request) Method() string { return r.method }

// URI returns the request URI.
func (r *Request) URI() URI { return r.uri }

// RequestTarget returns the explicit target, or path[?query] with an empty
// path reported as "/".
func (r *Request) RequestTarget() string {
	if r.target != "" {
		return r.target
	}
	return requestTarget(r.uri)
}

func requestTarget(u URI) string {
	target := u.Path()
	if target == "" {
		target = "/"
	}
	if q := u.Query(); q != "" {
		target += "?" + q
	}
	return target
}

func validateTarget(target string) error {
	if strings.ContainsFunc(target, unicode.IsSpace) {
		return fmt.Errorf("%w: %q", ErrInvalidRequestTarget, target)
	}
	return nil
}

func (r Request) withURI(uri URI, preserveHost bool) Request {
	r.uri = uri
	if !preserveHost || !r.headers.has("Host") {
		r.message = r.message.withHostFrom(uri)
	}
	return r
}

// WithMethod returns a copy using method.
func (r *Request) WithMethod(method string) (*Request, error) {
	normalized, err := normalizeMethod(method)
	if err != nil {
		return nil, err
	}
	c := *r
	c.method = normalized
	return &c, nil
}

// WithURI returns a copy using uri. Host is re-derived from the URI unless
// preserveHost is set and a Host header already exists.
func (r *Request) WithURI(uri URI, preserveHost bool) *Request {
	c := r.withURI(uri, preserveHost)
	return &c
}

// WithRequestTarget returns a copy with an explicit request target.
func (r *Request) WithRequestTarget(target string) (*Request, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	c := *r
	c.target = target
	return &c, nil
}

// WithHeader returns a copy with name replaced by value.
func (r *Request) WithHeader(name string, value any) (*Request, error) {
	m, err := r.message.withHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithAddedHeader returns a copy with value appended to name.
func (r *Request) WithAddedHeader(name string, value any) (*Request, error) {
	m, err := r.message.withAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithoutHeader returns a copy without name.
func (r *Request) WithoutHeader(name string) *Request {
	c := *r
	c.message = r.message.withoutHeader(name)
	return &c
}

// WithProtocolVersion returns a copy using version.
func (r *Request) WithProtocolVersion(version string) (*Request, error) {
	m, err := r.message.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithBody returns a copy using body.
func (r *Request) WithBody(body *Stream) *Request {
	c := *r
	c.message = r.message.withBody(body)
	return &c
}
