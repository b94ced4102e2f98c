// Package xregexp composes regular expressions from smaller productions, the
// way the repository, tag and digest grammars are written.
package xregexp

import (
	"regexp"
	"strings"
)

// Literal matches s verbatim.
func Literal(s string) string {
	return regexp.QuoteMeta(s)
}

// Expression concatenates productions.
func Expression(res ...string) string {
	return strings.Join(res, "")
}

// Any matches the concatenated productions zero or more times.
func Any(res ...string) string {
	return `(?:` + Expression(res...) + `)*`
}

// Anchored makes the concatenated productions match a whole string.
func Anchored(res ...string) string {
	return `^` + Expression(res...) + `$`
}

// MustCompileAnchored compiles Anchored(res...) and panics when it is invalid,
// it is meant for package level variables.
func MustCompileAnchored(res ...string) *regexp.Regexp {
	return regexp.MustCompile(Anchored(res...))
}
