package name

import (
	"github.com/wuxler/rregistry/pkg/errdefs"
)

// IsRepositoryNameValid reports whether name is a valid repository name.
func IsRepositoryNameValid(name string) bool {
	return AnchoredRepositoryNameRegexp.MatchString(name)
}

// IsTagNameValid reports whether tag is a valid tag.
func IsTagNameValid(tag string) bool {
	return AnchoredTagRegexp.MatchString(tag)
}

// IsDigestValid reports whether dgst is a valid digest.
//
// The grammar is the one accepted by the distribution API and is looser than
// [digest.Digest.Validate]: the algorithm does not need to be registered.
func IsDigestValid(dgst string) bool {
	return AnchoredDigestRegexp.MatchString(dgst)
}

// IsRequestValid reports whether the pair addresses a manifest at all: the name must
// be valid and the reference must be either a tag or a digest.
func IsRequestValid(name string, reference string) bool {
	return IsRepositoryNameValid(name) && Classify(reference) != KindInvalid
}

// ValidateRepositoryName checks whether the repository name is valid.
func ValidateRepositoryName(name string) error {
	if !IsRepositoryNameValid(name) {
		return errdefs.Newf(ErrBadName, "invalid repository name %q, not match regexp: %s",
			name, AnchoredRepositoryNameRegexp)
	}
	return nil
}

// ValidateTag checks whether the tag is valid.
func ValidateTag(tag string) error {
	if !IsTagNameValid(tag) {
		return errdefs.Newf(ErrBadName, "invalid tag format %q", tag)
	}
	return nil
}

// ValidateDigest checks whether the digest is valid.
func ValidateDigest(dgst string) error {
	if !IsDigestValid(dgst) {
		return errdefs.Newf(ErrBadName, "invalid digest format %q", dgst)
	}
	return nil
}

// ValidateReference checks whether reference is a tag or a digest.
func ValidateReference(reference string) error {
	if Classify(reference) == KindInvalid {
		return errdefs.Newf(ErrInvalidReference, "%q is neither a tag nor a digest", reference)
	}
	return nil
}
