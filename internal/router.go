package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

// Descriptor names the controller and action a route dispatches to.
type Descriptor struct {
	Controller string `json:"controller" yaml:"controller"`
	Action     string `json:"action" yaml:"action"`
}

func (d Descriptor) String() string {
	return d.Controller + "." + d.Action
}

// Route is a registered (method, path) pair with its descriptor.
type Route struct {
	action     Action
	Method     string
	Path       string
	Descriptor Descriptor
}

// Pattern returns "METHOD /path".
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

type routeKey struct {
	method string
	path   string
}

// Router matches requests by exact method and path. Routes are registered
// at boot; registering after the first Match is not supported.
type Router struct {
	resolver Resolver
	index    map[routeKey]int
	routes   []Route
}

// NewRouter creates a router resolving descriptors through resolver.
func NewRouter(resolver Resolver) *Router {
	return &Router{
		resolver: resolver,
		index:    make(map[routeKey]int),
	}
}

// Add registers d under the upper-cased method and the exact path. The action
// is resolved immediately; an unknown controller or action fails here rather
// than at dispatch. A later registration of the same key replaces the earlier.
func (r *Router) Add(method, path string, d Descriptor) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" || path == "" {
		return fmt.Errorf("%w: method and path are required", ErrInvalidRouteSpec)
	}

	action, err := r.resolver.Resolve(d)
	if err != nil {
		return err
	}

	route := Route{Method: method, Path: path, Descriptor: d, action: action}
	key := routeKey{method: method, path: path}
	if i, ok := r.index[key]; ok {
		r.routes[i] = route
		return nil
	}
	r.index[key] = len(r.routes)
	r.routes = append(r.routes, route)
	return nil
}

// Load registers every spec in order.
func (r *Router) Load(specs []RouteSpec) error {
	for _, s := range specs {
		if err := r.Add(s.Method, s.Path, Descriptor{Controller: s.Controller, Action: s.Action}); err != nil {
			return fmt.Errorf("route %s %s: %w", s.Method, s.Path, err)
		}
	}
	return nil
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Match finds the route for req. The request path loses one trailing slash
// unless it is "/". A path registered under another method is reported as
// not found, the same as an unknown path.
func (r *Router) Match(req *httpmsg.ServerRequest) (Route, error) {
	path := req.URI().Path()
	i, ok := r.index[routeKey{method: req.Method(), path: normalizePath(path)}]
	if !ok {
		return Route{}, &RouteNotFoundError{Method: req.Method(), Path: path}
	}
	return r.routes[i], nil
}

// Dispatch invokes the route's action. Routes built by hand are resolved
// on demand.
func (r *Router) Dispatch(ctx context.Context, route Route, req *httpmsg.ServerRequest) (any, error) {
	action := route.action
	if action == nil {
		var err error
		if action, err = r.resolver.Resolve(route.Descriptor); err != nil {
			return nil, err
		}
	}
	return action(ctx, req)
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}
