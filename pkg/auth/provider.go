package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Seed describes a user created by EnsureUsers.
type Seed struct {
	Username string
	Password string
	Roles    []string
}

// DatabaseProvider authenticates against the users table and keeps the
// principal's ID in the request session.
type DatabaseProvider struct {
	repo   *Repository
	hasher Hasher
	logger *slog.Logger
}

// ProviderOption configures a DatabaseProvider.
type ProviderOption func(*DatabaseProvider)

// WithHasher sets the password hasher.
func WithHasher(h Hasher) ProviderOption {
	return func(p *DatabaseProvider) {
		p.hasher = h
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *DatabaseProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewDatabaseProvider creates a provider backed by repo.
func NewDatabaseProvider(repo *Repository, opts ...ProviderOption) *DatabaseProvider {
	p := &DatabaseProvider{
		repo:   repo,
		hasher: NewHasher(0),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Provider = (*DatabaseProvider)(nil)

func (p *DatabaseProvider) Authenticate(ctx context.Context, username, password string) (*User, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, session.ErrNoSession
	}

	u, err := p.repo.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		p.logger.InfoContext(ctx, "login failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := p.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.logger.InfoContext(ctx, "login failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	sess.Authenticate(u.ID)
	p.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return u, nil
}

func (p *DatabaseProvider) CurrentUser(ctx context.Context) (*User, error) {
	sess := session.FromContext(ctx)
	if sess == nil || !sess.IsAuthenticated() {
		return nil, nil
	}

	u, err := p.repo.FindByID(ctx, *sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		p.logger.WarnContext(ctx, "session references missing user", slog.String("user_id", *sess.UserID))
		sess.Logout()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *DatabaseProvider) HasRole(u *User, roles ...string) bool {
	return u.HasAnyRole(roles...)
}

func (p *DatabaseProvider) Logout(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if sess == nil {
		return session.ErrNoSession
	}
	sess.Logout()
	return nil
}

// CreateUser hashes password and stores a new user.
func (p *DatabaseProvider) CreateUser(ctx context.Context, username, password string, roles ...string) (*User, error) {
	return p.createUser(ctx, p.repo, username, password, roles...)
}

func (p *DatabaseProvider) createUser(ctx context.Context, repo *Repository, username, password string, roles ...string) (*User, error) {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &User{Username: username, PasswordHash: hash, Roles: roles}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureUsers creates seeds in one transaction when the users table is
// empty and returns how many users were created.
func (p *DatabaseProvider) EnsureUsers(ctx context.Context, seeds ...Seed) (int, error) {
	n, err := p.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(seeds) == 0 {
		return 0, nil
	}

	err = p.repo.InTx(ctx, func(repo *Repository) error {
		for _, s := range seeds {
			if _, err := p.createUser(ctx, repo, s.Username, s.Password, s.Roles...); err != nil {
				return fmt.Errorf("auth: seed %s: %w", s.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, s := range seeds {
		p.logger.InfoContext(ctx, "seeded user", slog.String("username", s.Username))
	}
	return len(seeds), nil
}
