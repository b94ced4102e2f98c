package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attr is an alias of slog.Attr.
type Attr = slog.Attr

// Levels re-exported from log/slog.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// NewLevelVar returns a slog.LevelVar set to lvl.
func NewLevelVar(lvl slog.Level) *slog.LevelVar {
	v := &slog.LevelVar{}
	v.Set(lvl)
	return v
}

// ParseLevel parses level names like "debug", "INFO" or "warn+2".
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// argsToAttrSlice converts key-value pairs and Attrs to a slice of Attrs, the
// same way slog.Logger.With does.
func argsToAttrSlice(args []any) []slog.Attr {
	var attrs []slog.Attr
	for len(args) > 0 {
		var attr slog.Attr
		switch x := args[0].(type) {
		case string:
			if len(args) == 1 {
				attr, args = slog.String("!BADKEY", x), nil
				break
			}
			attr, args = slog.Any(x, args[1]), args[2:]
		case slog.Attr:
			attr, args = x, args[1:]
		default:
			attr, args = slog.Any("!BADKEY", x), args[1:]
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

// try calls fn and turns a panic into an error.
func try(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("unexpected panic: %v", r)
		}
	}()
	return fn()
}
