// Package db opens database/sql handles for the SQLite and PostgreSQL drivers
// and applies goose migrations.
//
// Drivers are registered by this package: [github.com/mattn/go-sqlite3]
// ("sqlite3") and [github.com/jackc/pgx/v5/stdlib] ("pgx").
//
// # Configuration
//
//	DATABASE_DRIVER             - sqlite3 or pgx (default: sqlite3)
//	DATABASE_DSN                - data source name (default: file:app.db?_foreign_keys=on)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//	DATABASE_MAX_OPEN_CONNS     - maximum open connections (default: 10)
//	DATABASE_MAX_IDLE_CONNS     - maximum idle connections (default: 5)
//	DATABASE_MAX_CONN_IDLE_TIME - maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - ping attempts at startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - base retry interval (default: 5s)
//
// # Usage
//
//	conn, err := db.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if err := db.Migrate(ctx, conn, cfg.Driver, auth.Migrations, cfg.MigrationsTable, logger); err != nil {
//		return err
//	}
//
// [Healthcheck] returns a closure for readiness probes and [WithTx] wraps a
// function in a transaction that rolls back on error or panic.
//
// # Error Handling
//
// Failures are reported as sentinel errors joined with the driver error:
// [ErrUnsupportedDriver], [ErrFailedToOpenDBConnection], [ErrHealthcheckFailed],
// [ErrSetDialect] and [ErrApplyMigrations].
package db
