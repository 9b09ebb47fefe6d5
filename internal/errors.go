package internal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Engine errors.
var (
	// ErrRouteNotFound matches every *RouteNotFoundError.
	ErrRouteNotFound = errors.New("route not found")

	// ErrUnknownHandler matches every *UnknownHandlerError.
	ErrUnknownHandler = errors.New("unknown handler")

	// ErrInvalidRouteSpec is returned for malformed route registrations.
	ErrInvalidRouteSpec = errors.New("invalid route spec")

	// ErrCSRFValidation is returned by controllers rejecting a form whose
	// CSRF token does not validate.
	ErrCSRFValidation = errors.New("invalid CSRF token")

	// ErrNoSession is returned by security operations called without a
	// session in the context.
	ErrNoSession = session.ErrNoSession
)

// RouteNotFoundError reports a request with no exact (method, path) match.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("No route found for %s %s", e.Method, e.Path)
}

func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// UnknownHandlerError reports a descriptor that does not resolve.
type UnknownHandlerError struct {
	Descriptor Descriptor
	Reason     string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrUnknownHandler, e.Reason, e.Descriptor)
}

func (e *UnknownHandlerError) Is(target error) bool {
	return target == ErrUnknownHandler
}

// HTTPError lets an action fail with a specific status. The message is shown
// to the client; Err is only logged.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, err ...error) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message, Err: errors.Join(err...)}
}

func ErrForbidden(message string, err ...error) *HTTPError {
	return &HTTPError{Code: http.StatusForbidden, Message: message, Err: errors.Join(err...)}
}

func ErrUnauthorized(message string, err ...error) *HTTPError {
	return &HTTPError{Code: http.StatusUnauthorized, Message: message, Err: errors.Join(err...)}
}

// Helper functions for error inspection.

// IsRouteNotFound reports whether err is a route miss.
func IsRouteNotFound(err error) bool {
	return errors.Is(err, ErrRouteNotFound)
}

// AsHTTPError extracts an HTTPError from err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// PanicError carries a value recovered from a panicking action.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
