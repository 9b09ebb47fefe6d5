package logger

import (
	"io"
	"log/slog"
)

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// orDiscard returns w, or io.Discard when w is nil.
func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
