package registryhttp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuxler/rregistry/pkg/registryhttp"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    registryhttp.Path
		wantErr bool
	}{
		{path: "/", want: registryhttp.Path{Type: registryhttp.PathTypeBase}},
		{path: "", want: registryhttp.Path{Type: registryhttp.PathTypeBase}},
		{
			path: "/hello/manifests/latest",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "hello", Reference: "latest"},
		},
		{
			path: "/library/nginx/manifests/sha256:abc",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "library/nginx", Reference: "sha256:abc"},
		},
		{
			path: "/a/b/c/manifests/v1/",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "a/b/c", Reference: "v1"},
		},
		{
			path: "/hello/blobs/uploads/",
			want: registryhttp.Path{Type: registryhttp.PathTypeBlob, Name: "hello"},
		},
		{
			path: "/hello/tags/list",
			want: registryhttp.Path{Type: registryhttp.PathTypeTags, Name: "hello"},
		},
		{
			path: "/hello/blobs/sha256:abc",
			want: registryhttp.Path{Type: registryhttp.PathTypeBlob, Name: "hello"},
		},
		{
			path: "/hello/blobs/uploads/5f1d",
			want: registryhttp.Path{Type: registryhttp.PathTypeBlob, Name: "hello"},
		},
		{
			path: "/team/tags/app/manifests/v1",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "team/tags/app", Reference: "v1"},
		},
		{
			path: "/org/blobs/manifests/v1",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "org/blobs", Reference: "v1"},
		},
		{
			path: "/org/manifests/manifests/sha256:abc",
			want: registryhttp.Path{Type: registryhttp.PathTypeManifest, Name: "org/manifests", Reference: "sha256:abc"},
		},
		{
			path: "/team/tags/app/tags/list",
			want: registryhttp.Path{Type: registryhttp.PathTypeTags, Name: "team/tags/app"},
		},
		{path: "/hello/manifests", wantErr: true},
		{path: "/hello/manifests/a/b", wantErr: true},
		{path: "/hello/tags/v1", wantErr: true},
		{path: "/manifests/latest", wantErr: true},
		{path: "/hello/world", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := registryhttp.ParsePath(tc.path)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
