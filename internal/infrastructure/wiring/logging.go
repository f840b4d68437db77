package wiring

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
