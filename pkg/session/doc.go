// Package session provides server-side session state and its stores.
//
// A Session holds the authenticated principal reference (UserID), CSRF
// tokens keyed by name, flash messages and arbitrary values. Sessions are
// addressed by a stable ID and looked up by a cookie token that is rotated
// whenever the principal changes.
//
// Two stores are provided:
//
//	store := session.NewMemoryStore(session.WithMaxSessions(10_000))
//
//	client, err := session.OpenRedis(ctx, session.RedisConfig{URL: os.Getenv("REDIS_URL")})
//	store := session.NewRedisStore(client, "session")
//
// The session for the current request travels in the context:
//
//	ctx = session.WithContext(ctx, sess)
//	sess := session.FromContext(ctx)
package session
