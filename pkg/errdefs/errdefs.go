// Package errdefs defines general error types and error operations.
package errdefs

import (
	"errors"
	"fmt"
)

// Newf wraps the base error and a formatted error created by fmt.Errorf,
// returns the error joined.
func Newf(base error, format string, args ...any) error {
	return errors.Join(base, fmt.Errorf(format, args...))
}

// NewE wraps the base error and the input error, returns the error joined.
func NewE(base error, err error) error {
	if err == nil || errors.Is(err, base) {
		return err
	}
	return errors.Join(base, err)
}

// IsNotFound reports whether err is caused by a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether err is caused by an unreachable backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsDataLoss reports whether err is caused by corrupted stored data.
func IsDataLoss(err error) bool {
	return errors.Is(err, ErrDataLoss)
}
