package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with the process-exit level the rest of the code expects.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stdout at the given slog level.
func New(level int) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a Logger writing to w. Used by tests to capture or
// discard output.
func NewWithWriter(w io.Writer, level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
