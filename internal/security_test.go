package internal_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/internal"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func okNext(ctx context.Context, _ *httpmsg.ServerRequest) (*httpmsg.Response, error) {
	return httpmsg.NewResponse(http.StatusOK, httpmsg.WithBodyString("ok"))
}

func TestSecurityCSRF(t *testing.T) {
	t.Parallel()

	newSecurity := func(t *testing.T, opts ...internal.SecurityOption) (*internal.Security, *clock) {
		t.Helper()
		c := &clock{now: time.Now()}
		opts = append([]internal.SecurityOption{internal.WithClock(c.Now)}, opts...)
		return internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(newStore(t)), opts...), c
	}
	sessionCtx := func() (context.Context, *session.Session) {
		sess := session.New("id", "token", time.Now().Add(time.Hour))
		return session.WithContext(context.Background(), sess), sess
	}

	t.Run("fresh token validates", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t)
		ctx, sess := sessionCtx()

		token, err := sec.GenerateCSRFToken(ctx)
		require.NoError(t, err)
		require.Len(t, token, 64)
		require.True(t, sec.ValidateCSRFToken(ctx, token))

		stored, ok := sess.CSRFToken("csrf_token")
		require.True(t, ok)
		require.Equal(t, token, stored.Token)
	})

	t.Run("altered token fails", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t)
		ctx, _ := sessionCtx()

		token, err := sec.GenerateCSRFToken(ctx)
		require.NoError(t, err)

		altered := []byte(token)
		if altered[10] == 'a' {
			altered[10] = 'b'
		} else {
			altered[10] = 'a'
		}
		require.False(t, sec.ValidateCSRFToken(ctx, string(altered)))
		require.False(t, sec.ValidateCSRFToken(ctx, token[:63]))
		require.False(t, sec.ValidateCSRFToken(ctx, ""))
	})

	t.Run("expired token fails", func(t *testing.T) {
		t.Parallel()
		sec, c := newSecurity(t, internal.WithCSRFTokenTTL(time.Minute))
		ctx, _ := sessionCtx()

		token, err := sec.GenerateCSRFToken(ctx)
		require.NoError(t, err)
		c.Advance(time.Minute)
		require.False(t, sec.ValidateCSRFToken(ctx, token))
	})

	t.Run("no stored token fails", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t)
		ctx, _ := sessionCtx()
		require.False(t, sec.ValidateCSRFToken(ctx, "anything"))
	})

	t.Run("custom token name", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t, internal.WithCSRFTokenName("_token"))
		ctx, sess := sessionCtx()

		_, err := sec.GenerateCSRFToken(ctx)
		require.NoError(t, err)
		_, ok := sess.CSRFToken("_token")
		require.True(t, ok)
		require.Equal(t, "_token", sec.CSRFTokenName())
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t)
		_, err := sec.GenerateCSRFToken(context.Background())
		require.ErrorIs(t, err, internal.ErrNoSession)
		require.False(t, sec.ValidateCSRFToken(context.Background(), "x"))
	})

	t.Run("disabled protection accepts anything", func(t *testing.T) {
		t.Parallel()
		sec, _ := newSecurity(t, internal.WithCSRFProtection(false))
		require.True(t, sec.ValidateCSRFToken(context.Background(), ""))
	})
}

func TestSecurityAuthorization(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	sec := internal.NewSecurity(newFakeProvider(adminUser, plainUser), internal.NewSessionManager(store))
	req := newRequest(t, http.MethodGet, "/admin")

	t.Run("no user", func(t *testing.T) {
		t.Parallel()
		require.False(t, sec.VerifyAuthorization(context.Background(), req))
		require.False(t, sec.VerifyAuthorization(context.Background(), req, auth.RoleUser))
	})

	t.Run("user and no roles required", func(t *testing.T) {
		t.Parallel()
		withUser := req.WithAttribute(internal.UserAttribute, plainUser)
		require.True(t, sec.VerifyAuthorization(context.Background(), withUser))
	})

	t.Run("any of the roles", func(t *testing.T) {
		t.Parallel()
		withUser := req.WithAttribute(internal.UserAttribute, plainUser)
		require.False(t, sec.VerifyAuthorization(context.Background(), withUser, auth.RoleAdmin))
		require.True(t, sec.VerifyAuthorization(context.Background(), withUser, auth.RoleAdmin, auth.RoleUser))
	})
}

func TestSecurityAuthenticate(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	sec := internal.NewSecurity(newFakeProvider(adminUser), internal.NewSessionManager(store))

	t.Run("public route skips the provider", func(t *testing.T) {
		t.Parallel()
		req := newRequest(t, http.MethodGet, "/login/")
		got, err := sec.Authenticate(context.Background(), req)
		require.NoError(t, err)
		require.Same(t, req, got)
		require.Nil(t, internal.CurrentUser(got))
	})

	t.Run("anonymous session", func(t *testing.T) {
		t.Parallel()
		ctx := session.WithContext(context.Background(), session.New("a", "b", time.Now().Add(time.Hour)))
		got, err := sec.Authenticate(ctx, newRequest(t, http.MethodGet, "/"))
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("principal attached", func(t *testing.T) {
		t.Parallel()
		sess := session.New("a", "b", time.Now().Add(time.Hour))
		sess.Authenticate(adminUser.ID)
		ctx := session.WithContext(context.Background(), sess)

		got, err := sec.Authenticate(ctx, newRequest(t, http.MethodGet, "/"))
		require.NoError(t, err)
		require.Equal(t, adminUser, internal.CurrentUser(got))
	})

	t.Run("custom public routes", func(t *testing.T) {
		t.Parallel()
		custom := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(store), internal.WithPublicRoutes("/signin"))
		require.True(t, custom.IsPublic("/signin"))
		require.False(t, custom.IsPublic("/login"))
	})
}

func TestSecurityProcess(t *testing.T) {
	t.Parallel()

	t.Run("starts a session and sets headers", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(store))

		var seen *session.Session
		resp, err := sec.Process(context.Background(), newRequest(t, http.MethodGet, "/"),
			func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
				seen = session.FromContext(ctx)
				return okNext(ctx, req)
			})
		require.NoError(t, err)
		require.NotNil(t, seen)
		require.Equal(t, 1, store.Len())

		c, ok := sessionCookie(t, resp)
		require.True(t, ok)
		require.Equal(t, seen.Token, c.Value)
		require.True(t, c.HttpOnly)

		require.Equal(t, "nosniff", resp.HeaderLine("X-Content-Type-Options"))
		require.Equal(t, "1; mode=block", resp.HeaderLine("X-XSS-Protection"))
		require.Equal(t, "DENY", resp.HeaderLine("X-Frame-Options"))
		require.Equal(t, "default-src 'self'; script-src 'self'; object-src 'none'", resp.HeaderLine("Content-Security-Policy"))
		require.Equal(t, "no-referrer-when-downgrade", resp.HeaderLine("Referrer-Policy"))
		require.False(t, resp.HasHeader("Strict-Transport-Security"))
	})

	t.Run("existing session is reused without a new cookie", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		sec := internal.NewSecurity(newFakeProvider(plainUser), internal.NewSessionManager(store))
		token := loggedIn(t, store, plainUser.ID)

		var seen *session.Session
		resp, err := sec.Process(context.Background(), withSessionCookie(newRequest(t, http.MethodGet, "/"), token),
			func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
				seen = session.FromContext(ctx)
				return okNext(ctx, req)
			})
		require.NoError(t, err)
		require.Equal(t, "sid-"+plainUser.ID, seen.ID)
		_, ok := sessionCookie(t, resp)
		require.False(t, ok)
	})

	t.Run("login rotates the token", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		provider := newFakeProvider(plainUser)
		sec := internal.NewSecurity(provider, internal.NewSessionManager(store))
		anon := session.New("anon", "anon-token", time.Now().Add(time.Hour))
		require.NoError(t, store.Create(context.Background(), anon))

		resp, err := sec.Process(context.Background(), withSessionCookie(newRequest(t, http.MethodPost, "/login"), "anon-token"),
			func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
				if _, err := provider.Authenticate(ctx, "user", testPassword); err != nil {
					return nil, err
				}
				return okNext(ctx, req)
			})
		require.NoError(t, err)

		c, ok := sessionCookie(t, resp)
		require.True(t, ok)
		require.NotEqual(t, "anon-token", c.Value)

		_, err = store.Get(context.Background(), "anon-token")
		require.ErrorIs(t, err, session.ErrNotFound)
		rotated, err := store.Get(context.Background(), c.Value)
		require.NoError(t, err)
		require.Equal(t, "anon", rotated.ID)
		require.Equal(t, plainUser.ID, *rotated.UserID)
	})

	t.Run("unknown cookie starts a new session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(store))

		resp, err := sec.Process(context.Background(), withSessionCookie(newRequest(t, http.MethodGet, "/"), "forged"), okNext)
		require.NoError(t, err)
		c, ok := sessionCookie(t, resp)
		require.True(t, ok)
		require.NotEqual(t, "forged", c.Value)
	})

	t.Run("secure requests get HSTS", func(t *testing.T) {
		t.Parallel()
		sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(newStore(t)))

		resp, err := sec.Process(context.Background(), newRequest(t, http.MethodGet, "https://example.com/"), okNext)
		require.NoError(t, err)
		require.Equal(t, "max-age=31536000; includeSubDomains", resp.HeaderLine("Strict-Transport-Security"))

		req, err := httpmsg.NewServerRequest(http.MethodGet, "/", httpmsg.WithServerParams(map[string]string{"HTTPS": "off"}))
		require.NoError(t, err)
		resp, err = sec.Process(context.Background(), req, okNext)
		require.NoError(t, err)
		require.False(t, resp.HasHeader("Strict-Transport-Security"))
	})

	t.Run("headers can be disabled", func(t *testing.T) {
		t.Parallel()
		sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(newStore(t)), internal.WithSecureHeaders(false))
		resp, err := sec.Process(context.Background(), newRequest(t, http.MethodGet, "/"), okNext)
		require.NoError(t, err)
		require.False(t, resp.HasHeader("X-Frame-Options"))
	})

	t.Run("failure still persists the session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(store))
		boom := errors.New("boom")

		resp, err := sec.Process(context.Background(), newRequest(t, http.MethodGet, "/"),
			func(ctx context.Context, _ *httpmsg.ServerRequest) (*httpmsg.Response, error) {
				session.FromContext(ctx).Flash("login_error", "nope")
				return nil, boom
			})
		require.ErrorIs(t, err, boom)
		require.Nil(t, resp)
		require.Equal(t, 1, store.Len())
	})
}

func TestSecurityOutput(t *testing.T) {
	t.Parallel()

	sec := internal.NewSecurity(newFakeProvider(), internal.NewSessionManager(newStore(t)))
	require.Equal(t, "&lt;b&gt;&#34;Tom&#34; &amp; &#39;Jerry&#39;&lt;/b&gt;", sec.EscapeOutput(`<b>"Tom" & 'Jerry'</b>`))
	require.Equal(t, "hello", sec.StripTags("<script>alert(1)</script><b>hello</b>"))
}
