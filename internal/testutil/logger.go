package testutil

import (
	"io"

	"github.com/chatline/chatline-server/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything, for tests.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
