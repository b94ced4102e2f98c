package errdefs

import "errors"

var (
	// ErrNotFound signals that the requested manifest, tag or alias doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParameter signals that the user input is invalid.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrConflict signals that the stored state conflicts with the requested action, e.g. a
	// set operation issued against a key holding a plain value.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable signals that the backing key-value store could not be reached.
	// It must never be reported to clients as a missing object.
	ErrUnavailable = errors.New("unavailable")

	// ErrDataLoss indicates that stored data is corrupted and cannot be decoded.
	ErrDataLoss = errors.New("data loss")

	// ErrUnsupported indicates that the action was not supported.
	ErrUnsupported = errors.New("unsupported")
)
