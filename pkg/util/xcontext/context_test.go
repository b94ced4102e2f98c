package xcontext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonBlockingCheck(t *testing.T) {
	assert.NoError(t, NonBlockingCheck(context.Background(), "alive"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NonBlockingCheck(ctx), context.Canceled)

	cause := errors.New("shutting down")
	ctx, cancelCause := context.WithCancelCause(context.Background())
	cancelCause(cause)
	err := NonBlockingCheck(ctx, "cascade", "manifest::a::b::alias")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cascade: manifest::a::b::alias: shutting down", err.Error())
}
