package xcontext

import (
	"context"
	"fmt"
	"strings"
)

// NonBlockingCheck reports the cause of ctx being done without waiting on it,
// prefixed with msgs when given. A live context returns nil.
func NonBlockingCheck(ctx context.Context, msgs ...string) error {
	select {
	case <-ctx.Done():
		if len(msgs) == 0 {
			return context.Cause(ctx)
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, ": "), context.Cause(ctx))
	default:
	}
	return nil
}
