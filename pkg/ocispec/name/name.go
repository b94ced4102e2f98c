package name

import (
	"strings"

	"github.com/opencontainers/go-digest"
)

// Kind is the classification of a reference string.
type Kind int

const (
	// KindInvalid is a reference matching neither grammar.
	KindInvalid Kind = iota
	// KindTag is a mutable, human chosen name.
	KindTag
	// KindDigest is an immutable, content derived identifier.
	KindDigest
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindDigest:
		return "digest"
	default:
		return "invalid"
	}
}

// Classify returns the kind of reference. The grammars are disjoint so the result
// is unambiguous.
func Classify(reference string) Kind {
	if IsTagNameValid(reference) {
		return KindTag
	}
	if IsDigestValid(reference) {
		return KindDigest
	}
	return KindInvalid
}

// IsDigest is a shortcut of Classify(reference) == KindDigest.
func IsDigest(reference string) bool {
	return Classify(reference) == KindDigest
}

// IsTag is a shortcut of Classify(reference) == KindTag.
func IsTag(reference string) bool {
	return Classify(reference) == KindTag
}

// AsDigest returns the reference typed as digest.Digest and whether it is a digest.
func AsDigest(reference string) (digest.Digest, bool) {
	if !IsDigest(reference) {
		return "", false
	}
	return digest.Digest(reference), true
}

// DefaultTag is the reference used by Split when none is given.
const DefaultTag = "latest"

// Split splits "name:tag" or "name@digest" into the repository name and the
// reference, the reference defaults to DefaultTag. The parts are not validated.
func Split(s string) (repo string, reference string) {
	if i := strings.LastIndex(s, "@"); i >= 0 {
		return s[:i], s[i+1:]
	}
	if i := strings.LastIndex(s, ":"); i > strings.LastIndex(s, "/") {
		return s[:i], s[i+1:]
	}
	return s, DefaultTag
}
