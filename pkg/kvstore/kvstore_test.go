package kvstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wuxler/rregistry/pkg/kvstore"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "manifest::test::exists", kvstore.ManifestKey("test", "exists"))
	assert.Equal(t, "manifest::library/alpine::sha256:abc", kvstore.ManifestKey("library/alpine", "sha256:abc"))
	assert.Equal(t, "manifest::test::sha256:abc::alias", kvstore.AliasKey("test", "sha256:abc"))
}

func TestKeys_NoCollision(t *testing.T) {
	// A tag can never end with "::alias" since ":" is not allowed in tags.
	assert.NotEqual(t, kvstore.ManifestKey("test", "sha256:abc"), kvstore.AliasKey("test", "sha256:abc"))
}
