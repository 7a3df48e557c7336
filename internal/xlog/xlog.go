// Package xlog is a thin slog wrapper that renders go-xerrors values
// as structured log attributes, so per-track ingest failures surface
// with context without aborting the run they occurred in.
package xlog

import (
	"log/slog"
	"os"

	"github.com/mdobak/go-xerrors"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// SetOutput redirects the package logger, primarily for tests.
func SetOutput(h slog.Handler) {
	logger = slog.New(h)
}

// Wrap attaches a stack trace to err for logging at a boundary worth
// remembering where a failure originated.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return xerrors.New(err)
}

// Error logs err at error level with the given message and attrs.
// Use where a failure is isolated (per-track ingest) and the caller
// continues.
func Error(msg string, err error, args ...any) {
	args = append(args, slog.Any("error", Wrap(err)))
	logger.Error(msg, args...)
}

// Info logs an informational line.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning line.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}
