package name

import (
	"errors"
)

var (
	// ErrBadName is an error for when a bad repository name, tag or digest is supplied.
	ErrBadName = errors.New("bad name")
	// ErrInvalidReference is an error for when a reference is neither a tag nor a digest.
	ErrInvalidReference = errors.New("invalid reference")
)
