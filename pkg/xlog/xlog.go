// Package xlog is the structured logging layer of the registry: a thin wrapper
// around log/slog with a level that can be changed at runtime, optional rotated
// file output and a logger carried by context.Context.
package xlog

import (
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(NewConfig()))
}

// Default returns the process wide Logger, used when a context carries none.
func Default() *Logger { return defaultLogger.Load() }

// SetDefault replaces the process wide Logger.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}
