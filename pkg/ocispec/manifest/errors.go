package manifest

import (
	"errors"

	"github.com/wuxler/rregistry/pkg/errdefs"
)

var (
	// ErrDecode is returned when stored bytes cannot be decoded as a manifest,
	// which means the backing store holds corrupted data.
	ErrDecode = errors.New("manifest decode error")

	// ErrInvalidField is returned when an invalid field is encountered.
	ErrInvalidField = errors.New("invalid field")
)

// NewErrDecode creates a new error with ErrDecode and errdefs.ErrDataLoss as the root causes.
func NewErrDecode(err error) error {
	return errors.Join(ErrDecode, errdefs.ErrDataLoss, err)
}

// NewErrInvalidField creates a new error with ErrInvalidField as the root cause.
func NewErrInvalidField(format string, args ...any) error {
	return errdefs.Newf(ErrInvalidField, format, args...)
}
