// Package kvstore defines the key-value backend contract the manifest store is
// built on, together with the key scheme it uses.
package kvstore

import (
	"context"
	"strings"
)

//go:generate mockgen -destination=../distribution/backend_mock_test.go -package=distribution_test github.com/wuxler/rregistry/pkg/kvstore Backend

// Backend is a key-value store holding plain values and sets of strings.
//
// Every single method must be atomic on its own. Sequences of calls are not
// isolated from concurrent callers.
type Backend interface {
	// Get returns the value of key, or nil without error if key is missing.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Exists reports whether key holds a value or a non-empty set.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key and returns the number of keys removed, 0 or 1.
	Delete(ctx context.Context, key string) (int64, error)
	// GetAndDelete atomically fetches and removes the value of key. It returns
	// nil without error if key is missing.
	GetAndDelete(ctx context.Context, key string) ([]byte, error)
	// SetMembers returns all members of the set stored at key, empty if key is missing.
	SetMembers(ctx context.Context, key string) ([]string, error)
	// SetAdd adds member to the set stored at key.
	SetAdd(ctx context.Context, key string, member string) error
	// SetRemove removes member from the set stored at key and returns the number
	// of members removed, 0 or 1. An emptied set no longer exists.
	SetRemove(ctx context.Context, key string, member string) (int64, error)
}

const (
	// ManifestPrefix is the leading component of every manifest related key.
	ManifestPrefix = "manifest"
	// AliasSuffix is the trailing component of alias set keys.
	AliasSuffix = "alias"

	keySeparator = "::"
)

// ManifestKey returns the key storing the serialized manifest addressed by
// reference, which is either a tag or a digest.
func ManifestKey(name string, reference string) string {
	return strings.Join([]string{ManifestPrefix, name, reference}, keySeparator)
}

// AliasKey returns the key of the set holding the tags currently pointing at dgst.
func AliasKey(name string, dgst string) string {
	return strings.Join([]string{ManifestPrefix, name, dgst, AliasSuffix}, keySeparator)
}
