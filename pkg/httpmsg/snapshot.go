package httpmsg

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Snapshot is the transport data a ServerRequest is built from. Env holds
// CGI-style server variables (HTTPS, HTTP_HOST, SERVER_NAME, SERVER_PORT,
// REQUEST_URI, QUERY_STRING, REQUEST_METHOD, SERVER_PROTOCOL, ...).
type Snapshot struct {
	Method  string
	Headers map[string][]string
	Body    io.Reader
	Env     map[string]string
	Query   url.Values
	Cookies map[string]string
	Form    any
	Files   map[string][]*UploadedFile
}

// FromSnapshot builds a ServerRequest from transport data. The URI is
// reconstructed from the server variables.
func FromSnapshot(s Snapshot) (*ServerRequest, error) {
	method := s.Method
	if method == "" {
		method = s.Env["REQUEST_METHOD"]
	}
	if method == "" {
		method = "GET"
	}

	uri, err := uriFromEnv(s.Env)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithHeaders(s.Headers),
		WithServerParams(s.Env),
	}
	if proto := strings.TrimPrefix(s.Env["SERVER_PROTOCOL"], "HTTP/"); proto != "" {
		opts = append(opts, WithVersion(proto))
	}
	if s.Body != nil {
		if st, ok := s.Body.(*Stream); ok {
			opts = append(opts, WithBody(st))
		} else {
			opts = append(opts, WithBody(NewStream(s.Body)))
		}
	}

	req, err := NewServerRequestWithURI(method, uri, opts...)
	if err != nil {
		return nil, err
	}

	query := s.Query
	if query == nil {
		if query, err = url.ParseQuery(uri.Query()); err != nil {
			return nil, fmt.Errorf("%w: query string: %w", ErrParse, err)
		}
	}
	req = req.WithQueryParams(query).WithCookieParams(s.Cookies)

	if s.Form != nil {
		if req, err = req.WithParsedBody(s.Form); err != nil {
			return nil, err
		}
	}
	if len(s.Files) > 0 {
		if req, err = req.WithUploadedFiles(s.Files); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func uriFromEnv(env map[string]string) (URI, error) {
	var u URI

	u.scheme = "http"
	if https := env["HTTPS"]; https != "" && https != "off" {
		u.scheme = "https"
	}

	if hostHeader := env["HTTP_HOST"]; hostHeader != "" {
		host, port, err := net.SplitHostPort(hostHeader)
		if err != nil {
			host, port = strings.Trim(hostHeader, "[]"), ""
		}
		u.host = strings.ToLower(host)
		if port != "" {
			if u.port, err = parsePort(port); err != nil {
				return URI{}, err
			}
		}
	} else if name := env["SERVER_NAME"]; name != "" {
		u.host = strings.ToLower(name)
	}

	if u.port == 0 && env["SERVER_PORT"] != "" {
		port, err := parsePort(env["SERVER_PORT"])
		if err != nil {
			return URI{}, err
		}
		u.port = port
	}
	if (u.scheme == "http" && u.port == 80) || (u.scheme == "https" && u.port == 443) {
		u.port = 0
	}

	if raw := env["REQUEST_URI"]; raw != "" {
		path, query, err := splitRequestTarget(raw)
		if err != nil {
			return URI{}, err
		}
		u.path = path
		u.query = query
	}
	if u.query == "" {
		u.query = env["QUERY_STRING"]
	}
	return u, nil
}

// splitRequestTarget returns the path and query of an origin-form target
// ("/a?b") verbatim, so "//x/y" stays a path. Absolute-form targets are
// parsed as URIs.
func splitRequestTarget(raw string) (string, string, error) {
	if !strings.HasPrefix(raw, "/") {
		target, err := ParseURI(raw)
		if err != nil {
			return "", "", err
		}
		return target.path, target.query, nil
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	path, query, _ := strings.Cut(raw, "?")
	if hasControl(path) || strings.ContainsAny(path, " ") {
		return "", "", fmt.Errorf("%w: request target %q", ErrInvalidURI, raw)
	}
	return path, query, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || !validPort(port) {
		return 0, fmt.Errorf("%w: port %q", ErrInvalidURI, s)
	}
	return port, nil
}
