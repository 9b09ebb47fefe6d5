package framework_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	framework "github.com/dfiliuk-tech/hw-2"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

const routesYAML = `
- {method: GET, path: /, controller: home, action: index}
- {method: GET, path: /login, controller: auth, action: form}
- {method: POST, path: /login, controller: auth, action: login}
- {method: GET, path: /logout, controller: auth, action: logout}
`

// staticProvider knows a single user with password "secret".
type staticProvider struct {
	user *framework.User
}

func (p staticProvider) Authenticate(ctx context.Context, username, password string) (*framework.User, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, framework.ErrNoSession
	}
	if username != p.user.Username || password != "secret" {
		return nil, auth.ErrInvalidCredentials
	}
	sess.Authenticate(p.user.ID)
	return p.user, nil
}

func (p staticProvider) CurrentUser(ctx context.Context) (*framework.User, error) {
	sess := session.FromContext(ctx)
	if sess == nil || !sess.IsAuthenticated() || *sess.UserID != p.user.ID {
		return nil, nil
	}
	return p.user, nil
}

func (p staticProvider) HasRole(u *framework.User, roles ...string) bool {
	return u.HasAnyRole(roles...)
}

func (p staticProvider) Logout(ctx context.Context) error {
	if sess := session.FromContext(ctx); sess != nil {
		sess.Logout()
	}
	return nil
}

func redirectTo(location string) (*framework.Response, error) {
	return httpmsg.NewResponse(http.StatusFound, httpmsg.WithHeaderValue("Location", location))
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := session.NewMemoryStore(session.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	provider := staticProvider{user: &framework.User{ID: "u-1", Username: "alice", Roles: []string{auth.RoleUser}}}
	security := framework.NewSecurity(provider, framework.NewSessionManager(store))

	registry := framework.NewRegistry()
	registry.Register("home", framework.ActionMap{
		"index": func(_ context.Context, req *framework.ServerRequest) (any, error) {
			return "Hello " + security.EscapeOutput(framework.CurrentUser(req).Username), nil
		},
	})
	registry.Register("auth", framework.ActionMap{
		"form": func(ctx context.Context, req *framework.ServerRequest) (any, error) {
			token, err := security.GenerateCSRFToken(ctx)
			if err != nil {
				return nil, err
			}
			msg, _ := req.Attribute("error", "").(string)
			return token + "|" + msg, nil
		},
		"login": func(ctx context.Context, req *framework.ServerRequest) (any, error) {
			if !security.ValidateCSRFToken(ctx, req.FormValue("csrf_token")) {
				return nil, framework.ErrBadRequest("Invalid CSRF token", framework.ErrCSRFValidation)
			}
			if _, err := provider.Authenticate(ctx, req.FormValue("username"), req.FormValue("password")); err != nil {
				session.FromContext(ctx).Flash("login_error", "Invalid credentials")
				return redirectTo("/login")
			}
			return redirectTo("/")
		},
		"logout": func(ctx context.Context, _ *framework.ServerRequest) (any, error) {
			if err := provider.Logout(ctx); err != nil {
				return nil, err
			}
			return redirectTo("/login")
		},
	})

	specs, err := framework.LoadRoutes(strings.NewReader(routesYAML))
	require.NoError(t, err)

	app, err := framework.New(
		framework.WithRouter(framework.NewRouter(registry)),
		framework.WithRoutes(specs...),
		framework.WithSecurity(security),
		framework.WithVerboseErrors(false),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, target string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func csrfFrom(t *testing.T, body string) string {
	t.Helper()
	token, _, ok := strings.Cut(body, "|")
	require.True(t, ok)
	require.Len(t, token, 64)
	return token
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	client := newClient(t)

	// Anonymous users land on the login form.
	resp, body := get(t, client, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/login", resp.Request.URL.Path)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	token := csrfFrom(t, body)

	resp, body = postForm(t, client, srv.URL+"/login", url.Values{
		"csrf_token": {token},
		"username":   {"alice"},
		"password":   {"secret"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path)
	require.Equal(t, "Hello alice", body)

	resp, _ = get(t, client, srv.URL+"/logout")
	require.Equal(t, "/login", resp.Request.URL.Path)

	resp, _ = get(t, client, srv.URL+"/")
	require.Equal(t, "/login", resp.Request.URL.Path)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	t.Run("wrong password flashes an error", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		_, body := get(t, client, srv.URL+"/login")
		resp, body := postForm(t, client, srv.URL+"/login", url.Values{
			"csrf_token": {csrfFrom(t, body)},
			"username":   {"alice"},
			"password":   {"wrong"},
		})
		require.Equal(t, "/login", resp.Request.URL.Path)
		require.True(t, strings.HasSuffix(body, "|Invalid credentials"))

		// The flash is consumed by the first render.
		_, body = get(t, client, srv.URL+"/login")
		require.True(t, strings.HasSuffix(body, "|"))
	})

	t.Run("forged csrf token", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		get(t, client, srv.URL+"/login")
		resp, body := postForm(t, client, srv.URL+"/login", url.Values{
			"csrf_token": {strings.Repeat("0", 64)},
			"username":   {"alice"},
			"password":   {"secret"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "400 Bad Request: Invalid CSRF token", body)
		require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		_, body := get(t, client, srv.URL+"/login")
		_, _ = postForm(t, client, srv.URL+"/login", url.Values{
			"csrf_token": {csrfFrom(t, body)},
			"username":   {"alice"},
			"password":   {"secret"},
		})

		resp, body := get(t, client, srv.URL+"/missing")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "404 Not Found: No route found for GET /missing", body)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRejectsUnknownHandlers(t *testing.T) {
	t.Parallel()

	_, err := framework.New(framework.WithRoutes(framework.RouteSpec{
		Method: http.MethodGet, Path: "/", Controller: "nope", Action: "index",
	}))
	require.ErrorIs(t, err, framework.ErrUnknownHandler)
}

func TestWrapResult(t *testing.T) {
	t.Parallel()

	resp, err := framework.WrapResult(map[string]string{"status": "ok"})
	require.NoError(t, err)
	require.Equal(t, "application/json", resp.HeaderLine("Content-Type"))
	require.JSONEq(t, `{"status":"ok"}`, resp.Body().String())
}
