// Package logging configures the process logger. Diagnostics go to
// stderr so stdout stays reserved for rendered results.
package logging

import (
	"io"
	"log/slog"
)

// New builds a text slog logger on w. Verbose enables debug output;
// otherwise only warnings and errors surface.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
