package registryhttp

import (
	"errors"
	"fmt"
	"strings"
)

// PathType identifies the kind of resource addressed below /v2/.
type PathType int

const (
	// PathTypeBase is the API version check endpoint /v2/.
	PathTypeBase PathType = iota
	// PathTypeManifest is /v2/<name>/manifests/<reference>.
	PathTypeManifest
	// PathTypeBlob is any path below /v2/<name>/blobs/.
	PathTypeBlob
	// PathTypeTags is any path below /v2/<name>/tags/.
	PathTypeTags
)

// Path is a parsed registry request path.
type Path struct {
	Type      PathType
	Name      string
	Reference string
}

var errPathInvalid = errors.New("invalid registry path")

// ParsePath parses the part of the URL path following /v2. Repository names
// may contain slashes and even "manifests", "blobs" or "tags" components, so the
// operation is read from the end of the path:
//
//	<name>/manifests/<reference>
//	<name>/tags/list
//	<name>/blobs/<digest>
//	<name>/blobs/uploads[/<id>]
func ParsePath(path string) (Path, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return Path{Type: PathTypeBase}, nil
	}

	parts := strings.Split(path, "/")
	n := len(parts)
	if n < 3 {
		return Path{}, fmt.Errorf("%w: %q", errPathInvalid, path)
	}
	nameOf := func(end int) string { return strings.Join(parts[:end], "/") }

	switch {
	case parts[n-2] == "manifests":
		return Path{Type: PathTypeManifest, Name: nameOf(n - 2), Reference: parts[n-1]}, nil
	case parts[n-2] == "tags" && parts[n-1] == "list":
		return Path{Type: PathTypeTags, Name: nameOf(n - 2)}, nil
	case parts[n-2] == "blobs":
		return Path{Type: PathTypeBlob, Name: nameOf(n - 2)}, nil
	case n >= 4 && parts[n-3] == "blobs" && parts[n-2] == "uploads":
		return Path{Type: PathTypeBlob, Name: nameOf(n - 3)}, nil
	}
	return Path{}, fmt.Errorf("%w: no manifests, blobs or tags operation in %q", errPathInvalid, path)
}
