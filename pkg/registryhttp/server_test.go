package registryhttp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/kvstore"
	"github.com/wuxler/rregistry/pkg/kvstore/memory"
	"github.com/wuxler/rregistry/pkg/kvstore/redis"
	"github.com/wuxler/rregistry/pkg/registryhttp"
)

const (
	configDigest = "sha256:6d3e4f1c8a7b2e9d0c5f4a3b2e1d0c9b8a7f6e5d4c3b2a1f0e9d8c7b6a5f4e3d"
	layerDigest  = "sha256:0a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9"
)

var manifestBody = `{
  "schemaVersion": 2,
  "mediaType": "application/vnd.oci.image.manifest.v1+json",
  "config": {
    "mediaType": "application/vnd.oci.image.config.v1+json",
    "digest": "` + configDigest + `",
    "size": 1469
  },
  "layers": [
    {
      "mediaType": "application/vnd.oci.image.layer.v1.tar+gzip",
      "digest": "` + layerDigest + `",
      "size": 3208
    }
  ]
}`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	t       *testing.T
	backend kvstore.Backend
	handler http.Handler
}

func newTestServer(t *testing.T, backend kvstore.Backend, opts ...registryhttp.Option) *testServer {
	t.Helper()
	return &testServer{
		t:       t,
		backend: backend,
		handler: registryhttp.New(backend, opts...).Router(),
	}
}

func (s *testServer) do(method string, path string, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) registryhttp.ErrorResponse {
	t.Helper()
	var resp registryhttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	return resp
}

func TestServer_Base(t *testing.T) {
	s := newTestServer(t, memory.New())

	rec := s.do(http.MethodGet, "/v2/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "registry/2.0", rec.Header().Get(registryhttp.APIVersionHeader))
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestServer_ManifestLifecycle(t *testing.T) {
	s := newTestServer(t, memory.New())

	rec := s.do(http.MethodPut, "/v2/library/nginx/manifests/latest", manifestBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, configDigest, rec.Header().Get(registryhttp.ContentDigestHeader))
	assert.Equal(t, "/v2/library/nginx/manifests/"+configDigest, rec.Header().Get("Location"))

	for _, ref := range []string{"latest", configDigest} {
		rec = s.do(http.MethodHead, "/v2/library/nginx/manifests/"+ref, "")
		assert.Equal(t, http.StatusOK, rec.Code, ref)
		assert.Empty(t, rec.Body.String())

		rec = s.do(http.MethodGet, "/v2/library/nginx/manifests/"+ref, "")
		require.Equal(t, http.StatusOK, rec.Code, ref)
		assert.Equal(t, "application/vnd.oci.image.manifest.v1+json", rec.Header().Get("Content-Type"))
		assert.Equal(t, configDigest, rec.Header().Get(registryhttp.ContentDigestHeader))
		assert.JSONEq(t, manifestBody, rec.Body.String())
	}

	rec = s.do(http.MethodDelete, "/v2/library/nginx/manifests/"+configDigest, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = s.do(http.MethodHead, "/v2/library/nginx/manifests/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/v2/library/nginx/manifests/"+configDigest, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, registryhttp.ErrCodeManifestUnknown, decodeErrors(t, rec).Errors[0].Code)
}

func TestServer_DeleteTagKeepsSiblings(t *testing.T) {
	s := newTestServer(t, memory.New())
	for _, tag := range []string{"t1", "t2"} {
		rec := s.do(http.MethodPut, "/v2/hello/manifests/"+tag, manifestBody)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodDelete, "/v2/hello/manifests/t1", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v2/hello/manifests/t1", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v2/hello/manifests/t2", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v2/hello/manifests/"+configDigest, "").Code)
}

func TestServer_NamesWithOperationComponents(t *testing.T) {
	s := newTestServer(t, memory.New())

	for _, repo := range []string{"team/tags/app", "org/blobs", "org/manifests"} {
		rec := s.do(http.MethodPut, "/v2/"+repo+"/manifests/v1", manifestBody)
		require.Equal(t, http.StatusCreated, rec.Code, repo)
		assert.Equal(t, "/v2/"+repo+"/manifests/"+configDigest, rec.Header().Get("Location"))

		rec = s.do(http.MethodGet, "/v2/"+repo+"/manifests/v1", "")
		assert.Equal(t, http.StatusOK, rec.Code, repo)
		assert.Equal(t, configDigest, rec.Header().Get(registryhttp.ContentDigestHeader))
	}
}

func TestServer_NotFound(t *testing.T) {
	s := newTestServer(t, memory.New())

	tests := []struct {
		name string
		path string
	}{
		{name: "unknown tag", path: "/v2/hello/manifests/latest"},
		{name: "unknown digest", path: "/v2/hello/manifests/" + configDigest},
		{name: "invalid reference", path: "/v2/hello/manifests/-latest"},
		{name: "invalid name", path: "/v2/Hello/manifests/latest"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, tc.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			resp := decodeErrors(t, rec)
			assert.Equal(t, registryhttp.ErrCodeManifestUnknown, resp.Errors[0].Code)
			assert.Nil(t, resp.Errors[0].Detail)

			assert.Equal(t, http.StatusNotFound, s.do(http.MethodHead, tc.path, "").Code)
			assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, tc.path, "").Code)
		})
	}
}

func TestServer_PutInvalid(t *testing.T) {
	s := newTestServer(t, memory.New(), registryhttp.WithMaxManifestSize(1024))

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "invalid json",
			path:     "/v2/hello/manifests/latest",
			body:     `{"schemaVersion":`,
			wantCode: http.StatusBadRequest,
			wantErr:  registryhttp.ErrCodeManifestInvalid,
		},
		{
			name:     "missing config digest",
			path:     "/v2/hello/manifests/latest",
			body:     `{"schemaVersion":2,"config":{}}`,
			wantCode: http.StatusBadRequest,
			wantErr:  registryhttp.ErrCodeManifestInvalid,
		},
		{
			name:     "digest mismatch",
			path:     "/v2/hello/manifests/" + layerDigest,
			body:     manifestBody,
			wantCode: http.StatusBadRequest,
			wantErr:  registryhttp.ErrCodeManifestInvalid,
		},
		{
			name:     "invalid name",
			path:     "/v2/Hello/manifests/latest",
			body:     manifestBody,
			wantCode: http.StatusBadRequest,
			wantErr:  registryhttp.ErrCodeNameInvalid,
		},
		{
			name:     "too large",
			path:     "/v2/hello/manifests/latest",
			body:     `{"schemaVersion":2,"annotations":{"a":"` + strings.Repeat("x", 2048) + `"}}`,
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  registryhttp.ErrCodeSizeInvalid,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPut, tc.path, tc.body)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantErr, decodeErrors(t, rec).Errors[0].Code)
		})
	}
}

func TestServer_Unsupported(t *testing.T) {
	s := newTestServer(t, memory.New())

	rec := s.do(http.MethodGet, "/v2/hello/blobs/"+layerDigest, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, registryhttp.ErrCodeUnsupported, decodeErrors(t, rec).Errors[0].Code)

	rec = s.do(http.MethodPost, "/v2/hello/manifests/latest", manifestBody)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = s.do(http.MethodGet, "/v2/hello/world", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CorruptedManifest(t *testing.T) {
	backend := memory.New()
	require.NoError(t, backend.Set(context.Background(), kvstore.ManifestKey("hello", "latest"), []byte{0xff}))
	s := newTestServer(t, backend)

	rec := s.do(http.MethodGet, "/v2/hello/manifests/latest", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, registryhttp.ErrCodeUnknown, decodeErrors(t, rec).Errors[0].Code)
}

// unavailableBackend fails every call the way a disconnected Redis does.
type unavailableBackend struct {
	kvstore.Backend
}

func errUnavailable() error {
	return errdefs.Newf(errdefs.ErrUnavailable, "dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (unavailableBackend) Get(context.Context, string) ([]byte, error) { return nil, errUnavailable() }

func (unavailableBackend) Set(context.Context, string, []byte) error { return errUnavailable() }

func (unavailableBackend) Exists(context.Context, string) (bool, error) { return false, errUnavailable() }

func (unavailableBackend) GetAndDelete(context.Context, string) ([]byte, error) {
	return nil, errUnavailable()
}

func TestServer_BackendUnavailable(t *testing.T) {
	s := newTestServer(t, unavailableBackend{})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := s.do(method, "/v2/hello/manifests/latest", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, method)
		assert.Equal(t, registryhttp.ErrCodeUnavailable, decodeErrors(t, rec).Errors[0].Code)
	}
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodHead, "/v2/hello/manifests/latest", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPut, "/v2/hello/manifests/latest", manifestBody).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/healthz", "").Code)
}

func TestServer_RedisLoading(t *testing.T) {
	mr := miniredis.RunT(t)
	backend := redis.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = backend.Close() })
	s := newTestServer(t, backend)

	rec := s.do(http.MethodPut, "/v2/hello/manifests/v1", manifestBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	for _, ref := range []string{"v1", configDigest} {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rec := s.do(method, "/v2/hello/manifests/"+ref, "")
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code, method+" "+ref)
			assert.Equal(t, registryhttp.ErrCodeUnavailable, decodeErrors(t, rec).Errors[0].Code)
		}
	}
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/healthz", "").Code)

	mr.SetError("")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v2/hello/manifests/"+configDigest, "").Code)
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, memory.New())

	rec := s.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
