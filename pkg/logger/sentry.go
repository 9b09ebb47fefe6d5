package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels are stored in Sentry as logs.
	// Errors always create issues.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), nil
}
