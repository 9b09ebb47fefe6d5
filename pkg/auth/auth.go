package auth

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"slices"
	"time"
)

// Well-known roles.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Errors.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrUserExists         = errors.New("auth: username already taken")
	ErrEmptyPassword      = errors.New("auth: empty password")
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations holds the goose migrations creating the users table.
var Migrations fs.FS = mustSub(migrationFiles, "migrations")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// User is an authenticated principal.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
}

// HasAnyRole reports whether u holds at least one of roles.
func (u *User) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}

// Provider resolves principals for the session carried by ctx.
type Provider interface {
	// Authenticate checks credentials and binds the user to the session.
	// Returns ErrInvalidCredentials on mismatch.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// CurrentUser returns the session's principal, or nil when anonymous.
	CurrentUser(ctx context.Context) (*User, error)

	// HasRole reports whether u holds at least one of roles.
	HasRole(u *User, roles ...string) bool

	// Logout drops the principal from the session.
	Logout(ctx context.Context) error
}
