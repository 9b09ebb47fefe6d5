package internal

import (
	"sync"
)

// Resolver turns a route descriptor into a callable action.
type Resolver interface {
	Resolve(d Descriptor) (Action, error)
}

// Registry maps controller identifiers to controllers. It is filled at boot
// and read during route registration.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]Controller)}
}

// Register adds or replaces the controller known as id.
func (r *Registry) Register(id string, c Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers[id] = c
}

// Resolve returns the action named by d, or an *UnknownHandlerError.
func (r *Registry) Resolve(d Descriptor) (Action, error) {
	r.mu.RLock()
	c, ok := r.controllers[d.Controller]
	r.mu.RUnlock()
	if !ok || c == nil {
		return nil, &UnknownHandlerError{Descriptor: d, Reason: "unknown controller"}
	}

	action, ok := c.Actions()[d.Action]
	if !ok || action == nil {
		return nil, &UnknownHandlerError{Descriptor: d, Reason: "unknown action"}
	}
	return action, nil
}
