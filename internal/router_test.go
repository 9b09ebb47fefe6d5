package internal_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

func newTestRouter(t *testing.T) (*internal.Router, *internal.Registry) {
	t.Helper()
	registry := internal.NewRegistry()
	registry.Register("pages", internal.ActionMap{
		"a":     textAction("a"),
		"b":     textAction("b"),
		"root":  textAction("root"),
		"other": textAction("other"),
	})
	return internal.NewRouter(registry), registry
}

func TestRouterMatch(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.NoError(t, router.Add(http.MethodGet, "/a", internal.Descriptor{Controller: "pages", Action: "a"}))
	require.NoError(t, router.Add(http.MethodGet, "/", internal.Descriptor{Controller: "pages", Action: "root"}))

	t.Run("exact path", func(t *testing.T) {
		t.Parallel()
		route, err := router.Match(newRequest(t, http.MethodGet, "/a"))
		require.NoError(t, err)
		require.Equal(t, "GET /a", route.Pattern())
		require.Equal(t, "pages.a", route.Descriptor.String())
	})

	t.Run("trailing slash is stripped", func(t *testing.T) {
		t.Parallel()
		route, err := router.Match(newRequest(t, http.MethodGet, "/a/"))
		require.NoError(t, err)
		require.Equal(t, "/a", route.Path)
	})

	t.Run("root is kept", func(t *testing.T) {
		t.Parallel()
		route, err := router.Match(newRequest(t, http.MethodGet, "/"))
		require.NoError(t, err)
		require.Equal(t, "/", route.Path)
	})

	for _, tc := range []struct {
		method, target, message string
	}{
		{http.MethodPost, "/a", "No route found for POST /a"},
		{http.MethodGet, "/b", "No route found for GET /b"},
		{http.MethodGet, "/a/b", "No route found for GET /a/b"},
		{http.MethodGet, "/a//", "No route found for GET /a//"},
	} {
		t.Run("miss "+tc.method+" "+tc.target, func(t *testing.T) {
			t.Parallel()
			_, err := router.Match(newRequest(t, tc.method, tc.target))
			require.ErrorIs(t, err, internal.ErrRouteNotFound)
			require.True(t, internal.IsRouteNotFound(err))
			require.EqualError(t, err, tc.message)
		})
	}
}

func TestRouterAdd(t *testing.T) {
	t.Parallel()

	t.Run("method is upper-cased", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		require.NoError(t, router.Add("get", "/a", internal.Descriptor{Controller: "pages", Action: "a"}))

		_, err := router.Match(newRequest(t, http.MethodGet, "/a"))
		require.NoError(t, err)
	})

	t.Run("same key overwrites", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		require.NoError(t, router.Add(http.MethodGet, "/a", internal.Descriptor{Controller: "pages", Action: "a"}))
		require.NoError(t, router.Add(http.MethodPost, "/a", internal.Descriptor{Controller: "pages", Action: "b"}))
		require.NoError(t, router.Add(http.MethodGet, "/a", internal.Descriptor{Controller: "pages", Action: "other"}))

		routes := router.Routes()
		require.Len(t, routes, 2)
		require.Equal(t, "GET /a", routes[0].Pattern())
		require.Equal(t, "POST /a", routes[1].Pattern())

		req := newRequest(t, http.MethodGet, "/a")
		route, err := router.Match(req)
		require.NoError(t, err)
		result, err := router.Dispatch(context.Background(), route, req)
		require.NoError(t, err)
		require.Equal(t, "other", result)
	})

	t.Run("unknown controller fails at registration", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		err := router.Add(http.MethodGet, "/x", internal.Descriptor{Controller: "missing", Action: "a"})
		require.ErrorIs(t, err, internal.ErrUnknownHandler)
		require.Contains(t, err.Error(), "unknown controller")
		require.Empty(t, router.Routes())
	})

	t.Run("unknown action fails at registration", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		err := router.Add(http.MethodGet, "/x", internal.Descriptor{Controller: "pages", Action: "missing"})
		require.ErrorIs(t, err, internal.ErrUnknownHandler)
		require.Contains(t, err.Error(), "unknown action")
	})

	t.Run("empty method", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		err := router.Add(" ", "/x", internal.Descriptor{Controller: "pages", Action: "a"})
		require.ErrorIs(t, err, internal.ErrInvalidRouteSpec)
	})
}

func TestRouterDispatch(t *testing.T) {
	t.Parallel()

	router, registry := newTestRouter(t)
	registry.Register("echo", internal.ActionMap{
		"method": func(_ context.Context, req *httpmsg.ServerRequest) (any, error) {
			return req.Method(), nil
		},
	})

	t.Run("hand-built route is resolved on demand", func(t *testing.T) {
		t.Parallel()
		route := internal.Route{Method: http.MethodPut, Path: "/x", Descriptor: internal.Descriptor{Controller: "echo", Action: "method"}}
		result, err := router.Dispatch(context.Background(), route, newRequest(t, http.MethodPut, "/x"))
		require.NoError(t, err)
		require.Equal(t, http.MethodPut, result)
	})

	t.Run("hand-built route with unknown handler", func(t *testing.T) {
		t.Parallel()
		route := internal.Route{Descriptor: internal.Descriptor{Controller: "echo", Action: "nope"}}
		_, err := router.Dispatch(context.Background(), route, newRequest(t, http.MethodGet, "/"))
		var unknown *internal.UnknownHandlerError
		require.ErrorAs(t, err, &unknown)
		require.Equal(t, "nope", unknown.Descriptor.Action)
	})
}

func TestLoadRoutes(t *testing.T) {
	t.Parallel()

	t.Run("ordered specs", func(t *testing.T) {
		t.Parallel()
		specs, err := internal.LoadRoutes(strings.NewReader(`
- {method: GET, path: /, controller: pages, action: root}
- method: post
  path: /a
  controller: pages
  action: a
`))
		require.NoError(t, err)
		require.Equal(t, []internal.RouteSpec{
			{Method: "GET", Path: "/", Controller: "pages", Action: "root"},
			{Method: "post", Path: "/a", Controller: "pages", Action: "a"},
		}, specs)

		router, _ := newTestRouter(t)
		require.NoError(t, router.Load(specs))
		_, err = router.Match(newRequest(t, http.MethodPost, "/a"))
		require.NoError(t, err)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		specs, err := internal.LoadRoutes(strings.NewReader(""))
		require.NoError(t, err)
		require.Empty(t, specs)
	})

	for name, doc := range map[string]string{
		"missing action":   "- {method: GET, path: /, controller: pages}",
		"relative path":    "- {method: GET, path: a, controller: pages, action: a}",
		"unknown field":    "- {method: GET, path: /, controller: pages, action: a, name: x}",
		"not a list":       "method: GET",
		"missing method":   "- {path: /, controller: pages, action: a}",
		"blank controller": "- {method: GET, path: /, controller: '', action: a}",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := internal.LoadRoutes(strings.NewReader(doc))
			require.ErrorIs(t, err, internal.ErrInvalidRouteSpec)
		})
	}

	t.Run("load reports the failing route", func(t *testing.T) {
		t.Parallel()
		router, _ := newTestRouter(t)
		err := router.Load([]internal.RouteSpec{{Method: "GET", Path: "/z", Controller: "nope", Action: "x"}})
		require.ErrorIs(t, err, internal.ErrUnknownHandler)
		require.Contains(t, err.Error(), "route GET /z")
	})
}
