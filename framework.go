package framework

import (
	"io"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Type aliases - public API
type (
	// App runs the request lifecycle: security, routing, dispatch and
	// result wrapping. It is immutable after New.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Router matches requests to routes by exact method and path.
	Router = internal.Router

	// Registry resolves descriptors to controller actions.
	Registry = internal.Registry

	// Resolver turns a descriptor into an action.
	Resolver = internal.Resolver

	// Descriptor names the controller and action a route dispatches to.
	Descriptor = internal.Descriptor

	// Route is a registered (method, path) pair.
	Route = internal.Route

	// RouteSpec is one entry of a route table file.
	RouteSpec = internal.RouteSpec

	// Action is the signature of a controller action.
	Action = internal.Action

	// NextFunc continues the request pipeline.
	NextFunc = internal.NextFunc

	// Middleware wraps the pipeline inside the security layer.
	Middleware = internal.Middleware

	// Controller exposes named actions.
	Controller = internal.Controller

	// ActionMap is a Controller backed by a map.
	ActionMap = internal.ActionMap

	// Security guards requests with sessions, CSRF tokens and headers.
	Security = internal.Security

	// SecurityOption configures Security.
	SecurityOption = internal.SecurityOption

	// SessionManager loads and persists request sessions.
	SessionManager = internal.SessionManager

	// SessionOption configures the SessionManager.
	SessionOption = internal.SessionOption

	// CheckFunc is a readiness check.
	CheckFunc = internal.CheckFunc

	// HTTPError is an error with an HTTP status.
	HTTPError = internal.HTTPError

	// RouteNotFoundError is returned for requests no route matches.
	RouteNotFoundError = internal.RouteNotFoundError

	// UnknownHandlerError is returned for descriptors naming an unknown
	// controller or action.
	UnknownHandlerError = internal.UnknownHandlerError

	// PanicError carries a value recovered from a panicking action.
	PanicError = internal.PanicError

	// ServerRequest is the immutable incoming request.
	ServerRequest = httpmsg.ServerRequest

	// Response is the immutable outgoing response.
	Response = httpmsg.Response

	// User is an authenticated principal.
	User = auth.User

	// AuthProvider resolves principals for the current session.
	AuthProvider = auth.Provider

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Errors
var (
	ErrRouteNotFound    = internal.ErrRouteNotFound
	ErrUnknownHandler   = internal.ErrUnknownHandler
	ErrInvalidRouteSpec = internal.ErrInvalidRouteSpec
	ErrCSRFValidation   = internal.ErrCSRFValidation
	ErrNoSession        = internal.ErrNoSession
	ErrBodyTooLarge     = internal.ErrBodyTooLarge
)

// UserAttribute is the request attribute holding the current *User.
const UserAttribute = internal.UserAttribute

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrBadRequest returns a 400 HTTPError.
func ErrBadRequest(message string, err ...error) *HTTPError {
	return internal.ErrBadRequest(message, err...)
}

// ErrForbidden returns a 403 HTTPError.
func ErrForbidden(message string, err ...error) *HTTPError {
	return internal.ErrForbidden(message, err...)
}

// ErrUnauthorized returns a 401 HTTPError.
func ErrUnauthorized(message string, err ...error) *HTTPError {
	return internal.ErrUnauthorized(message, err...)
}

// IsRouteNotFound reports whether err is a route miss.
func IsRouteNotFound(err error) bool {
	return internal.IsRouteNotFound(err)
}

// AsHTTPError extracts an HTTPError from err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// CurrentUser returns the principal attached by authentication, or nil.
func CurrentUser(req *ServerRequest) *User {
	return internal.CurrentUser(req)
}

// LoadRoutes reads a YAML route table.
func LoadRoutes(r io.Reader) ([]RouteSpec, error) {
	return internal.LoadRoutes(r)
}

// WrapResult converts an action result into a response.
func WrapResult(result any) (*Response, error) {
	return internal.WrapResult(result)
}
