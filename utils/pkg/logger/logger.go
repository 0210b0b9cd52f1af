package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New creates a tint-backed slog logger writing to stderr.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger at the given level writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

// NewTest creates a debug-level logger for tests.
func NewTest() *slog.Logger {
	return NewWithWriter(os.Stderr, slog.LevelDebug)
}
