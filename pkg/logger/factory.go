package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the output format, level and optional Sentry fan-out.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// New creates a logger writing to stdout with optional context extractors.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter creates a logger writing to w. When cfg.Sentry.DSN is set,
// records are also forwarded to Sentry.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	handler := newHandler(orDiscard(w), cfg)
	if cfg.Sentry.DSN != "" {
		if sentryHandler, err := newSentryHandler(cfg.Sentry); err != nil {
			slog.New(handler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			handler = newMultiHandler(handler, sentryHandler)
		}
	}
	return slog.New(NewLogHandlerDecorator(handler, extractors...))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
