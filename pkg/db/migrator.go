package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// Migrate applies the SQL migrations found at the root of migrations.
func Migrate(ctx context.Context, conn *sql.DB, driver string, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(migrationTable)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns an error after Fatalf; exiting here would skip shutdown.
	g.log.Error(fmt.Sprintf(format, args...))
}
