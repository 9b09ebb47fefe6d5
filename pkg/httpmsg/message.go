package httpmsg

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

const defaultProtocolVersion = "1.1"

var supportedProtocols = []string{"1.0", "1.1", "2", "2.0", "3", "3.0"}

// message holds the parts shared by requests and responses. Read accessors
// are promoted to the embedding types; each embedding type declares its own
// withers so they return the concrete type.
type message struct {
	headers  headers
	protocol string
	body     *Stream
}

func newMessage() message {
	return message{protocol: defaultProtocolVersion}
}

// ProtocolVersion returns the HTTP version, e.g. "1.1".
func (m *message) ProtocolVersion() string {
	return m.protocol
}

// Headers iterates over headers in insertion order using the original
// casing of each name.
func (m *message) Headers() iter.Seq2[string, []string] {
	return m.headers.all()
}

// HeaderMap returns a copy of all headers keyed by their original names.
func (m *message) HeaderMap() map[string][]string {
	return maps.Collect(m.headers.all())
}

// HeaderNames returns header names in insertion order.
func (m *message) HeaderNames() []string {
	return slices.Clone(m.headers.names)
}

// HasHeader reports whether name is present, ignoring case.
func (m *message) HasHeader(name string) bool {
	return m.headers.has(name)
}

// Header returns the values of name, or an empty slice.
func (m *message) Header(name string) []string {
	return m.headers.get(name)
}

// HeaderLine returns the values of name joined with ", ".
func (m *message) HeaderLine(name string) string {
	return strings.Join(m.headers.get(name), ", ")
}

// Body returns the body stream. A message built without a body gets an
// empty in-memory stream on first access.
func (m *message) Body() *Stream {
	if m.body == nil {
		m.body = NewEmptyStream()
	}
	return m.body
}

func (m message) withHeader(name string, value any) (message, error) {
	if err := validateHeaderName(name); err != nil {
		return m, err
	}
	values, err := headerValues(value)
	if err != nil {
		return m, err
	}
	m.headers = m.headers.set(name, values)
	return m, nil
}

func (m message) withAddedHeader(name string, value any) (message, error) {
	if err := validateHeaderName(name); err != nil {
		return m, err
	}
	values, err := headerValues(value)
	if err != nil {
		return m, err
	}
	m.headers = m.headers.add(name, values)
	return m, nil
}

func (m message) withoutHeader(name string) message {
	if !m.headers.has(name) {
		return m
	}
	m.headers = m.headers.remove(name)
	return m
}

func (m message) withProtocolVersion(version string) (message, error) {
	if !slices.Contains(supportedProtocols, version) {
		return m, fmt.Errorf("%w: %q", ErrInvalidProtocol, version)
	}
	m.protocol = version
	return m, nil
}

func (m message) withBody(body *Stream) message {
	m.body = body
	return m
}
