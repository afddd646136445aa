package grpcresilient

import (
	"log/slog"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// slogLogger adapts the standard library's log/slog.Logger to types.Logger,
// the engine's default when no Logger option is supplied.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an *slog.Logger as a types.Logger.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

var _ types.Logger = (*slogLogger)(nil)

// noopLogger discards everything.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards every call, for callers who
// want the engine's diagnostics suppressed entirely.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

var _ types.Logger = noopLogger{}
