package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Dialect returns the goose/squirrel dialect name for a driver.
func Dialect(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	default:
		return "", ErrUnsupportedDriver
	}
}

// Open opens a database handle and verifies it with a ping, retrying with
// linear backoff: attempt 1 waits RetryInterval, attempt 2 waits 2x, and so on.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if _, err := Dialect(cfg.Driver); err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.Driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		if err = conn.PingContext(ctx); err == nil {
			return conn, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	_ = conn.Close()
	return nil, errors.Join(ErrFailedToOpenDBConnection, err)
}

// Healthcheck returns a readiness check that pings the database.
func Healthcheck(conn *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := conn.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
