// Package logger sets up the structured logger shared by all components.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on stderr. Only warnings and errors are shown unless verbose is set.
func New(verbose bool) *slog.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithRunID tags every record of one pipeline run.
func WithRunID(log *slog.Logger, runID string) *slog.Logger {
	return log.With(slog.String("run_id", runID))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
