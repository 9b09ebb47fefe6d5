// Package logger builds log/slog loggers with context extraction and optional
// Sentry reporting.
//
// # Basic Usage
//
//	log := logger.New(logger.Config{Level: "debug", Format: "text"},
//		logger.StringExtractor("request_id", middlewares.GetRequestID),
//	)
//	log.InfoContext(ctx, "request handled", slog.Int("status", 200))
//
// Config is usually loaded from the environment:
//
//	LOG_LEVEL          - debug, info, warn, error (default: info)
//	LOG_FORMAT         - json or text (default: json)
//	SENTRY_DSN         - enables Sentry when set
//	SENTRY_ENVIRONMENT - Sentry environment (default: production)
//	SENTRY_MIN_LEVEL   - lowest level stored as Sentry logs (default: WARN)
//
// # Sentry
//
// When a DSN is configured, records go to both the local handler and Sentry.
// Errors create issues; warnings (or errors only, depending on MinLevel) are
// stored as logs. If Sentry fails to initialize the logger keeps writing
// locally.
//
// # Context Extractors
//
// A [ContextExtractor] runs on every record and may add one attribute.
// [LogHandlerDecorator] applies extractors to any slog.Handler.
//
// [NewNope] returns a logger that discards everything, used as the default
// across the engine and in tests.
package logger
