package httpmsg

import (
	"errors"
	"fmt"
)

// Error taxonomy. Specific errors below wrap exactly one of these.
var (
	ErrParse       = errors.New("httpmsg: parse error")
	ErrValidation  = errors.New("httpmsg: validation error")
	ErrState       = errors.New("httpmsg: invalid state")
	ErrUnsupported = errors.New("httpmsg: unsupported operation")
)

var (
	ErrInvalidURI           = fmt.Errorf("%w: malformed uri", ErrParse)
	ErrInvalidPort          = fmt.Errorf("%w: port must be in range 1-65535", ErrValidation)
	ErrInvalidPath          = fmt.Errorf("%w: path must not contain '?' or '#'", ErrValidation)
	ErrInvalidQuery         = fmt.Errorf("%w: query must not contain '#' or control characters", ErrValidation)
	ErrInvalidFragment      = fmt.Errorf("%w: fragment must not contain control characters", ErrValidation)
	ErrInvalidScheme        = fmt.Errorf("%w: invalid scheme", ErrValidation)
	ErrInvalidHeaderName    = fmt.Errorf("%w: invalid header name", ErrValidation)
	ErrInvalidHeaderValue   = fmt.Errorf("%w: invalid header value", ErrValidation)
	ErrInvalidProtocol      = fmt.Errorf("%w: unsupported protocol version", ErrValidation)
	ErrInvalidMethod        = fmt.Errorf("%w: invalid http method", ErrValidation)
	ErrInvalidRequestTarget = fmt.Errorf("%w: request target must not contain whitespace", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: status code must be in range 100-599", ErrValidation)
	ErrInvalidParsedBody    = fmt.Errorf("%w: parsed body must be a map, struct, slice or nil", ErrValidation)
	ErrInvalidUploadedFiles = fmt.Errorf("%w: uploaded files must be *UploadedFile values", ErrValidation)

	ErrStreamDetached    = fmt.Errorf("%w: stream is detached or closed", ErrState)
	ErrFileMoved         = fmt.Errorf("%w: uploaded file already moved", ErrState)
	ErrStreamNotReadable = fmt.Errorf("%w: stream is not readable", ErrUnsupported)
	ErrStreamNotWritable = fmt.Errorf("%w: stream is not writable", ErrUnsupported)
	ErrStreamNotSeekable = fmt.Errorf("%w: stream is not seekable", ErrUnsupported)
)
