package session

import "context"

// Store persists sessions. Sessions are looked up by cookie token and
// addressed by ID otherwise, so an Update may carry a rotated token.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its token.
	// Returns ErrNotFound if the session doesn't exist.
	// Returns ErrExpired if the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session, including a new token.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error
}
