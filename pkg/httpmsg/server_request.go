package httpmsg

import (
	"fmt"
	"maps"
	"net/url"
	"reflect"
)

// ServerRequest is an inbound request as seen by the server. In addition to
// the Request data it carries server variables, cookies, query parameters,
// uploaded files, the parsed body and request-scoped attributes.
type ServerRequest struct {
	Request
	serverParams map[string]string
	cookies      map[string]string
	query        url.Values
	files        map[string][]*UploadedFile
	parsedBody   any
	attributes   map[string]any
}

// NewServerRequest parses uri and builds a server request.
func NewServerRequest(method, uri string, opts ...Option) (*ServerRequest, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return NewServerRequestWithURI(method, u, opts...)
}

// NewServerRequestWithURI is like NewServerRequest with a parsed URI.
func NewServerRequestWithURI(method string, uri URI, opts ...Option) (*ServerRequest, error) {
	c := newConfig(opts)
	r, err := newRequest(method, uri, c)
	if err != nil {
		return nil, err
	}
	return &ServerRequest{
		Request:      r,
		serverParams: maps.Clone(c.serverParams),
	}, nil
}

// ServerParams returns a copy of the server variables.
func (r *ServerRequest) ServerParams() map[string]string {
	return maps.Clone(r.serverParams)
}

// ServerParam returns a single server variable.
func (r *ServerRequest) ServerParam(name string) string {
	return r.serverParams[name]
}

// CookieParams returns a copy of the request cookies.
func (r *ServerRequest) CookieParams() map[string]string {
	return maps.Clone(r.cookies)
}

// Cookie returns a cookie value and whether it was sent.
func (r *ServerRequest) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}

// WithCookieParams returns a copy using cookies.
func (r *ServerRequest) WithCookieParams(cookies map[string]string) *ServerRequest {
	c := *r
	c.cookies = maps.Clone(cookies)
	return &c
}

// QueryParams returns a copy of the query parameters.
func (r *ServerRequest) QueryParams() url.Values {
	out := make(url.Values, len(r.query))
	for k, v := range r.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// QueryParam returns the first value of a query parameter.
func (r *ServerRequest) QueryParam(name string) string {
	return r.query.Get(name)
}

// WithQueryParams returns a copy using query. The URI is not changed.
func (r *ServerRequest) WithQueryParams(query url.Values) *ServerRequest {
	c := *r
	c.query = make(url.Values, len(query))
	for k, v := range query {
		c.query[k] = append([]string(nil), v...)
	}
	return &c
}

// UploadedFiles returns the uploaded files keyed by form field.
func (r *ServerRequest) UploadedFiles() map[string][]*UploadedFile {
	return maps.Clone(r.files)
}

// WithUploadedFiles returns a copy using files. Nil entries are rejected.
func (r *ServerRequest) WithUploadedFiles(files map[string][]*UploadedFile) (*ServerRequest, error) {
	for field, list := range files {
		for _, f := range list {
			if f == nil {
				return nil, fmt.Errorf("%w: nil file in field %q", ErrInvalidUploadedFiles, field)
			}
		}
	}
	c := *r
	c.files = maps.Clone(files)
	return &c, nil
}

// ParsedBody returns the decoded body, or nil.
func (r *ServerRequest) ParsedBody() any {
	return r.parsedBody
}

// WithParsedBody returns a copy using data. Data must be nil, a map, a
// slice, a struct, or a pointer to a map or struct.
func (r *ServerRequest) WithParsedBody(data any) (*ServerRequest, error) {
	if !validParsedBody(data) {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidParsedBody, data)
	}
	c := *r
	c.parsedBody = data
	return &c, nil
}

func validParsedBody(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
		return v.Kind() == reflect.Map || v.Kind() == reflect.Struct
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct:
		return true
	default:
		return false
	}
}

// FormValue returns a string field from a map[string]any or url.Values
// parsed body.
func (r *ServerRequest) FormValue(name string) string {
	switch body := r.parsedBody.(type) {
	case url.Values:
		return body.Get(name)
	case map[string]string:
		return body[name]
	case map[string]any:
		if s, ok := body[name].(string); ok {
			return s
		}
	}
	return ""
}

// Attributes returns a copy of the request attributes.
func (r *ServerRequest) Attributes() map[string]any {
	return maps.Clone(r.attributes)
}

// Attribute returns the named attribute, or def when it is not set.
func (r *ServerRequest) Attribute(name string, def any) any {
	if v, ok := r.attributes[name]; ok {
		return v
	}
	return def
}

// WithAttribute returns a copy with the attribute set.
func (r *ServerRequest) WithAttribute(name string, value any) *ServerRequest {
	c := *r
	c.attributes = maps.Clone(r.attributes)
	if c.attributes == nil {
		c.attributes = make(map[string]any, 1)
	}
	c.attributes[name] = value
	return &c
}

// WithoutAttribute returns a copy without the attribute.
func (r *ServerRequest) WithoutAttribute(name string) *ServerRequest {
	if _, ok := r.attributes[name]; !ok {
		return r
	}
	c := *r
	c.attributes = maps.Clone(r.attributes)
	delete(c.attributes, name)
	return &c
}

// IsSecure reports whether the request arrived over TLS, judged by the
// HTTPS server variable or the URI scheme.
func (r *ServerRequest) IsSecure() bool {
	if https := r.serverParams["HTTPS"]; https != "" && https != "off" {
		return true
	}
	return r.uri.Scheme() == "https"
}

// WithMethod returns a copy using method.
func (r *ServerRequest) WithMethod(method string) (*ServerRequest, error) {
	normalized, err := normalizeMethod(method)
	if err != nil {
		return nil, err
	}
	c := *r
	c.method = normalized
	return &c, nil
}

// WithURI returns a copy using uri; see Request.WithURI.
func (r *ServerRequest) WithURI(uri URI, preserveHost bool) *ServerRequest {
	c := *r
	c.Request = r.Request.withURI(uri, preserveHost)
	return &c
}

// WithRequestTarget returns a copy with an explicit request target.
func (r *ServerRequest) WithRequestTarget(target string) (*ServerRequest, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	c := *r
	c.target = target
	return &c, nil
}

// WithHeader returns a copy with name replaced by value.
func (r *ServerRequest) WithHeader(name string, value any) (*ServerRequest, error) {
	m, err := r.message.withHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithAddedHeader returns a copy with value appended to name.
func (r *ServerRequest) WithAddedHeader(name string, value any) (*ServerRequest, error) {
	m, err := r.message.withAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithoutHeader returns a copy without name.
func (r *ServerRequest) WithoutHeader(name string) *ServerRequest {
	c := *r
	c.message = r.message.withoutHeader(name)
	return &c
}

// WithProtocolVersion returns a copy using version.
func (r *ServerRequest) WithProtocolVersion(version string) (*ServerRequest, error) {
	m, err := r.message.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithBody returns a copy using body.
func (r *ServerRequest) WithBody(body *Stream) *ServerRequest {
	c := *r
	c.message = r.message.withBody(body)
	return &c
}
