package xlog

import (
	"log/slog"
	"path/filepath"
)

// AttrReplacer rewrites an attribute before it is logged, see
// slog.HandlerOptions.ReplaceAttr.
type AttrReplacer func(groups []string, attr slog.Attr) Attr

// NormalizeSourceAttrReplacer shortens the source location to file:line, the
// directory of the file is dropped.
func NormalizeSourceAttrReplacer() AttrReplacer {
	return func(_ []string, attr slog.Attr) Attr {
		if attr.Key != slog.SourceKey {
			return attr
		}
		if source, ok := attr.Value.Any().(*slog.Source); ok {
			source.File = filepath.Base(source.File)
		}
		return attr
	}
}
