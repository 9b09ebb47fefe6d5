package internal_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

const testPassword = "secret"

// fakeProvider resolves principals from the context session.
type fakeProvider struct {
	users map[string]*auth.User
}

func newFakeProvider(users ...*auth.User) *fakeProvider {
	p := &fakeProvider{users: make(map[string]*auth.User, len(users))}
	for _, u := range users {
		p.users[u.ID] = u
	}
	return p
}

func (p *fakeProvider) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, session.ErrNoSession
	}
	for _, u := range p.users {
		if u.Username == username && password == testPassword {
			sess.Authenticate(u.ID)
			return u, nil
		}
	}
	return nil, auth.ErrInvalidCredentials
}

func (p *fakeProvider) CurrentUser(ctx context.Context) (*auth.User, error) {
	sess := session.FromContext(ctx)
	if sess == nil || !sess.IsAuthenticated() {
		return nil, nil
	}
	return p.users[*sess.UserID], nil
}

func (p *fakeProvider) HasRole(u *auth.User, roles ...string) bool {
	return u.HasAnyRole(roles...)
}

func (p *fakeProvider) Logout(ctx context.Context) error {
	if sess := session.FromContext(ctx); sess != nil {
		sess.Logout()
	}
	return nil
}

var (
	adminUser = &auth.User{ID: "u-admin", Username: "admin", Roles: []string{auth.RoleAdmin}}
	plainUser = &auth.User{ID: "u-user", Username: "user", Roles: []string{auth.RoleUser}}
)

func newStore(t *testing.T) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore(session.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// loggedIn stores an authenticated session for userID and returns its token.
func loggedIn(t *testing.T, store session.Store, userID string) string {
	t.Helper()
	sess := session.New("sid-"+userID, "tok-"+userID, time.Now().Add(time.Hour))
	sess.Authenticate(userID)
	require.NoError(t, store.Create(context.Background(), sess))
	return sess.Token
}

func newRequest(t *testing.T, method, target string) *httpmsg.ServerRequest {
	t.Helper()
	req, err := httpmsg.NewServerRequest(method, target)
	require.NoError(t, err)
	return req
}

func withSessionCookie(req *httpmsg.ServerRequest, token string) *httpmsg.ServerRequest {
	return req.WithCookieParams(map[string]string{"__sid": token})
}

func bodyOf(t *testing.T, resp *httpmsg.Response) string {
	t.Helper()
	return resp.Body().String()
}

// sessionCookie extracts the __sid value from the response's Set-Cookie header.
func sessionCookie(t *testing.T, resp *httpmsg.Response) (*http.Cookie, bool) {
	t.Helper()
	for _, line := range resp.Header("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		require.NoError(t, err)
		if c.Name == "__sid" {
			return c, true
		}
	}
	return nil, false
}

func textAction(s string) internal.Action {
	return func(context.Context, *httpmsg.ServerRequest) (any, error) {
		return s, nil
	}
}
