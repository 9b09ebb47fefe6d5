package framework

import (
	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	registry := framework.NewRegistry()
//	registry.Register("home", framework.ActionMap{"index": home.Index})
//
//	app, err := framework.New(
//	    framework.WithRouter(framework.NewRouter(registry)),
//	    framework.WithRoutes(specs...),
//	    framework.WithSecurity(security),
//	    framework.WithLogger(log),
//	)
//
//	err = app.Run(":8080", framework.Logger(log))
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// NewRegistry creates an empty controller registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// NewRouter creates a router resolving actions through resolver.
func NewRouter(resolver Resolver) *Router {
	return internal.NewRouter(resolver)
}

// NewSessionManager creates a session manager backed by store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManager(store, opts...)
}

// NewSecurity creates the security layer. provider resolves principals and
// sessions loads and persists the request session.
func NewSecurity(provider auth.Provider, sessions *SessionManager, opts ...SecurityOption) *Security {
	return internal.NewSecurity(provider, sessions, opts...)
}
