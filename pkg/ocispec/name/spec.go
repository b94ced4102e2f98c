package name

import (
	"github.com/wuxler/rregistry/pkg/util/xregexp"
)

var (
	literal    = xregexp.Literal
	expression = xregexp.Expression
	anyOf      = xregexp.Any
)

const (
	// alphaNumeric defines the alpha numeric atom of repository path components.
	// Only lower case characters and digits are allowed.
	alphaNumeric = `[a-z0-9]+`

	// separator allows exactly one of ".", "_" or "-" between alpha numeric atoms.
	separator = `[._-]`

	// tagPat matches valid tag names, at most 128 characters.
	tagPat = `[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}`

	// digestAlgorithmComponent is a single lowercase algorithm token such as "sha256".
	digestAlgorithmComponent = `[a-z0-9]+`

	// digestAlgorithmSeparator joins algorithm components, e.g. "sha256+b64u".
	digestAlgorithmSeparator = `[+._-]`

	// digestEncoded is the encoded portion of a digest, hex or urlsafe base64.
	digestEncoded = `[a-zA-Z0-9=_-]+`
)

var (
	pathComponent = expression(alphaNumeric, anyOf(separator, alphaNumeric))

	repositoryNamePat = expression(pathComponent, anyOf(literal("/"), pathComponent))

	digestAlgorithm = expression(digestAlgorithmComponent, anyOf(digestAlgorithmSeparator, digestAlgorithmComponent))

	digestPat = expression(digestAlgorithm, literal(":"), digestEncoded)
)

var (
	// AnchoredRepositoryNameRegexp matches a whole repository name like "library/alpine".
	AnchoredRepositoryNameRegexp = xregexp.MustCompileAnchored(repositoryNamePat)

	// AnchoredTagRegexp matches a whole tag like "v1.0.0".
	AnchoredTagRegexp = xregexp.MustCompileAnchored(tagPat)

	// AnchoredDigestRegexp matches a whole digest like "sha256:<encoded>".
	AnchoredDigestRegexp = xregexp.MustCompileAnchored(digestPat)
)
