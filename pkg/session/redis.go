package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session"

// RedisConfig holds the Redis connection settings for the session store.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL"`
	Prefix        string        `env:"SESSION_REDIS_PREFIX" envDefault:"session"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
}

// OpenRedis connects to Redis, retrying with a linear backoff until the
// server answers PING. Supports redis:// and rediss:// URLs.
func OpenRedis(ctx context.Context, cfg RedisConfig) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyRedisURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, errors.Join(ErrRedisUnavailable, errors.New("unsupported url scheme"))
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrRedisUnavailable, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisUnavailable, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrRedisUnavailable
}

// RedisStore keeps sessions in Redis as JSON. Two keys are written per
// session: <prefix>:token:<token> holds the data and <prefix>:id:<id> holds
// the current token. Both expire with the session.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses "session".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) tokenKey(token string) string { return r.prefix + ":token:" + token }
func (r *RedisStore) idKey(id string) string       { return r.prefix + ":id:" + id }

// Create persists a new session.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	return r.write(ctx, s, "")
}

// Get retrieves a session by token.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, r.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrCorrupted, err)
	}
	if s.IsExpired() {
		_ = r.Delete(ctx, s.ID)
		return nil, ErrExpired
	}
	return &s, nil
}

// Update overwrites the session and drops the previous token key when the
// token was rotated.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	previous, err := r.client.Get(ctx, r.idKey(s.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	if previous == s.Token {
		previous = ""
	}
	return r.write(ctx, s, previous)
}

// Delete removes a session by ID.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return r.client.Del(ctx, r.idKey(id), r.tokenKey(token)).Err()
}

// Ping checks the connection. Used as a readiness check.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) write(ctx context.Context, s *Session, staleToken string) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if staleToken != "" {
			pipe.Del(ctx, r.tokenKey(staleToken))
		}
		pipe.Set(ctx, r.tokenKey(s.Token), data, ttl)
		pipe.Set(ctx, r.idKey(s.ID), s.Token, ttl)
		return nil
	})
	return err
}

var _ Store = (*RedisStore)(nil)
