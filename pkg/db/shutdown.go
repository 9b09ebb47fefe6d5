package db

import (
	"context"
	"database/sql"
)

// Shutdown returns a function that closes the database handle.
// Use as a runtime shutdown hook.
func Shutdown(conn *sql.DB) func(ctx context.Context) error {
	return func(context.Context) error {
		return conn.Close()
	}
}
