package xio

import (
	"context"
	"io"

	"github.com/wuxler/rregistry/pkg/xlog"
)

// CloseAndSkipError is used to close the io.Closer and ignore the error returned.
func CloseAndSkipError(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// CloseAndLogError closes c and logs a warning with the logger carried by ctx
// when it fails. Use it as "defer xio.CloseAndLogError(ctx, c, "backend")".
func CloseAndLogError(ctx context.Context, c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		xlog.C(ctx).Warn("unable to close", "target", what, "error", err)
	}
}
