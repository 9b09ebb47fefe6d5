package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrNoSession is returned when a context carries no session.
	ErrNoSession = errors.New("session: no session in context")

	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("session: store closed")

	// ErrEmptyRedisURL is returned when no Redis URL is configured.
	ErrEmptyRedisURL = errors.New("session: empty redis url")

	// ErrRedisUnavailable is returned when Redis cannot be reached.
	ErrRedisUnavailable = errors.New("session: redis unavailable")

	// ErrCorrupted is returned when a stored session cannot be decoded.
	ErrCorrupted = errors.New("session: corrupted session data")
)
