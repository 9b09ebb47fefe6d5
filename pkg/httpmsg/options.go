package httpmsg

import (
	"slices"
)

type headerField struct {
	name  string
	value any
}

// config collects constructor options for requests and responses.
type config struct {
	headers      []headerField
	body         *Stream
	version      string
	reason       *string
	serverParams map[string]string
}

// Option configures a message at construction.
type Option func(*config)

// WithHeaderValue adds a header. Repeating a name appends values.
func WithHeaderValue(name string, value any) Option {
	return func(c *config) {
		c.headers = append(c.headers, headerField{name: name, value: value})
	}
}

// WithHeaders adds all headers from h. Names are applied in sorted order so
// construction is deterministic.
func WithHeaders(h map[string][]string) Option {
	return func(c *config) {
		names := make([]string, 0, len(h))
		for name := range h {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			c.headers = append(c.headers, headerField{name: name, value: slices.Clone(h[name])})
		}
	}
}

// WithBody sets the body stream.
func WithBody(body *Stream) Option {
	return func(c *config) {
		c.body = body
	}
}

// WithBodyString sets an in-memory body holding s.
func WithBodyString(s string) Option {
	return func(c *config) {
		c.body = NewStreamFromString(s)
	}
}

// WithVersion sets the protocol version.
func WithVersion(version string) Option {
	return func(c *config) {
		c.version = version
	}
}

// WithReason sets an explicit reason phrase. Responses only.
func WithReason(reason string) Option {
	return func(c *config) {
		c.reason = &reason
	}
}

// WithServerParams sets the server variables of a ServerRequest.
func WithServerParams(params map[string]string) Option {
	return func(c *config) {
		c.serverParams = params
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// build applies the collected options to m.
func (c *config) build(m message) (message, error) {
	var err error
	for _, h := range c.headers {
		m, err = m.withAddedHeader(h.name, h.value)
		if err != nil {
			return m, err
		}
	}
	if c.version != "" {
		if m, err = m.withProtocolVersion(c.version); err != nil {
			return m, err
		}
	}
	if c.body != nil {
		m = m.withBody(c.body)
	}
	return m, nil
}
