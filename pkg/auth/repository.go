package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/dfiliuk-tech/hw-2/pkg/db"
)

const usersTable = "users"

var userColumns = []string{"id", "username", "password", "roles", "created_at"}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository stores users in the users table.
type Repository struct {
	conn    *sql.DB
	db      querier
	builder sq.StatementBuilderType
	now     func() time.Time
}

// NewRepository returns a Repository for conn. driver selects the placeholder
// format: "$1" for pgx, "?" otherwise.
func NewRepository(conn *sql.DB, driver string) *Repository {
	var ph sq.PlaceholderFormat = sq.Question
	if driver == db.DriverPostgres {
		ph = sq.Dollar
	}
	return &Repository{
		conn:    conn,
		db:      conn,
		builder: sq.StatementBuilder.PlaceholderFormat(ph),
		now:     time.Now,
	}
}

// InTx runs fn with a repository bound to a single transaction. The
// transaction is rolled back when fn fails.
func (r *Repository) InTx(ctx context.Context, fn func(repo *Repository) error) error {
	return db.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		txRepo := *r
		txRepo.db = tx
		return fn(&txRepo)
	})
}

// FindByUsername returns ErrUserNotFound when no row matches.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, sq.Eq{"username": username})
}

// FindByID returns ErrUserNotFound when no row matches.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *Repository) findOne(ctx context.Context, where sq.Eq) (*User, error) {
	query, args, err := r.builder.Select(userColumns...).From(usersTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("auth: build select: %w", err)
	}

	var (
		u     User
		roles string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash, &roles, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: select user: %w", err)
	}
	if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
		return nil, fmt.Errorf("auth: decode roles of %s: %w", u.Username, err)
	}
	return &u, nil
}

// Create inserts u, assigning an ID and creation time when missing.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC()
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return fmt.Errorf("auth: encode roles: %w", err)
	}

	query, args, err := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Username, u.PasswordHash, string(roles), u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("auth: build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("auth: insert user: %w", err)
	}
	return nil
}

// Count returns the number of users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(usersTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("auth: build count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("auth: count users: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
