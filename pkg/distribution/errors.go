package distribution

import (
	"errors"

	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/ocispec/name"
)

var (
	// ErrManifestUnknown is returned when no manifest is reachable from the reference,
	// including after following aliases.
	ErrManifestUnknown = errdefs.Newf(errdefs.ErrNotFound, "manifest unknown")

	// ErrAliasDepthExceeded is returned when following aliases does not reach a
	// manifest within MaxAliasDepth hops, which only happens on a corrupted store.
	ErrAliasDepthExceeded = errors.Join(ErrManifestUnknown, errors.New("alias depth exceeded"))
)

// invalidRequest reports a request rejected by validation. It is a not-found error
// so that callers do not leak validation details.
func invalidRequest(repo string, reference string) error {
	return errors.Join(ErrManifestUnknown, errdefs.Newf(name.ErrInvalidReference, "%s:%s", repo, reference))
}
