// Package name classifies the strings used to address manifests inside the registry:
// repository names, tags and digests.
//
// # Grammar
//
//	repository-name      := path-component ['/' path-component]*
//	path-component       := alpha-numeric [separator alpha-numeric]*
//	alpha-numeric        := /[a-z0-9]+/
//	separator            := /[._-]/
//
//	tag                  := /[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}/
//
//	digest               := algorithm ":" encoded
//	algorithm            := algorithm-component [algorithm-separator algorithm-component]*
//	algorithm-component  := /[a-z0-9]+/
//	algorithm-separator  := /[+._-]/
//	encoded              := /[a-zA-Z0-9=_-]+/
//
// A tag can never contain ":" while a digest always does, so every reference is
// either a tag, a digest or invalid.
//
// All predicates are total: they never panic and simply return false for
// malformed input, including the empty string.
package name
