package httpmsg

import "fmt"

// Response is an immutable HTTP response.
type Response struct {
	message
	status int
	reason string
}

// NewResponse builds a response. Without WithReason the phrase comes from
// the standard table.
func NewResponse(status int, opts ...Option) (*Response, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	c := newConfig(opts)
	msg, err := c.build(newMessage())
	if err != nil {
		return nil, err
	}

	r := &Response{message: msg, status: status, reason: ReasonPhrase(status)}
	if c.reason != nil {
		r.reason = *c.reason
	}
	return r, nil
}

func validateStatus(code int) error {
	if code < 100 || code > 599 {
		return fmt.Errorf("%w: got %d", ErrInvalidStatus, code)
	}
	return nil
}

func (r *Response) StatusCode() int      { return r.status }
func (r *Response) ReasonPhrase() string { return r.reason }

// WithStatus returns a copy with the status replaced. The first reason, if
// given and non-empty, overrides the table phrase.
func (r *Response) WithStatus(code int, reason ...string) (*Response, error) {
	if err := validateStatus(code); err != nil {
		return nil, err
	}
	c := *r
	c.status = code
	c.reason = ReasonPhrase(code)
	if len(reason) > 0 && reason[0] != "" {
		c.reason = reason[0]
	}
	return &c, nil
}

// WithHeader returns a copy with name replaced by value.
func (r *Response) WithHeader(name string, value any) (*Response, error) {
	m, err := r.message.withHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithAddedHeader returns a copy with value appended to name.
func (r *Response) WithAddedHeader(name string, value any) (*Response, error) {
	m, err := r.message.withAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithoutHeader returns a copy without name.
func (r *Response) WithoutHeader(name string) *Response {
	c := *r
	c.message = r.message.withoutHeader(name)
	return &c
}

// WithProtocolVersion returns a copy using version.
func (r *Response) WithProtocolVersion(version string) (*Response, error) {
	m, err := r.message.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := *r
	c.message = m
	return &c, nil
}

// WithBody returns a copy using body.
func (r *Response) WithBody(body *Stream) *Response {
	c := *r
	c.message = r.message.withBody(body)
	return &c
}
