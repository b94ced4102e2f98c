package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// New creates a Logger writing through the handler built from c.
func New(c Config) *Logger {
	return &Logger{handler: c.BuildHandler()}
}

// Logger writes leveled records with key-value attributes. Source locations
// point at the caller of Debug, Info, Warn or Error.
type Logger struct {
	handler slog.Handler
}

// SetLevel changes the minimum level of l and of every Logger derived from it
// with With.
func (l *Logger) SetLevel(lvl slog.Level) {
	SetHandlerLevel(l.handler, lvl)
}

// With returns a Logger adding args to every record, see slog.Logger.With.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{handler: l.handler.WithAttrs(argsToAttrSlice(args))}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

// log must be called directly by the exported level methods, the caller depth
// is fixed.
func (l *Logger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [runtime.Callers, log, Debug/Info/Warn/Error]
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r) //nolint:errcheck // nowhere to report it
}
