package registryhttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/wuxler/rregistry/pkg/appinfo"
	"github.com/wuxler/rregistry/pkg/distribution"
	"github.com/wuxler/rregistry/pkg/kvstore"
	"github.com/wuxler/rregistry/pkg/ocispec/manifest"
	"github.com/wuxler/rregistry/pkg/ocispec/name"
	"github.com/wuxler/rregistry/pkg/xlog"
)

const (
	// APIVersionHeader is sent on every /v2 response.
	APIVersionHeader = "Docker-Distribution-API-Version"
	// APIVersion is the value of APIVersionHeader.
	APIVersion = appinfo.APIVersion
	// ContentDigestHeader carries the manifest digest.
	ContentDigestHeader = "Docker-Content-Digest"

	// DefaultMaxManifestSize is the largest manifest body accepted by PUT.
	DefaultMaxManifestSize int64 = 4 << 20

	healthProbeKey = "rregistry::healthz"
)

// Option configures a Server.
type Option func(*Server)

// WithMaxManifestSize overrides DefaultMaxManifestSize.
func WithMaxManifestSize(n int64) Option {
	return func(s *Server) {
		s.maxManifestSize = n
	}
}

// New returns a Server answering requests from backend.
func New(backend kvstore.Backend, opts ...Option) *Server {
	s := &Server{
		backend:         backend,
		store:           distribution.NewManifestStore(),
		maxManifestSize: DefaultMaxManifestSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Server implements the registry HTTP API.
type Server struct {
	backend         kvstore.Backend
	store           *distribution.ManifestStore
	maxManifestSize int64
}

// Router builds the gin engine serving the registry API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", s.healthz)
	v2 := router.Group("/v2", func(c *gin.Context) {
		c.Header(APIVersionHeader, APIVersion)
	})
	v2.Any("/*path", s.dispatch)
	return router
}

func (s *Server) healthz(c *gin.Context) {
	if _, err := s.backend.Exists(c.Request.Context(), healthProbeKey); err != nil {
		xlog.C(c.Request.Context()).Warn("health probe failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) dispatch(c *gin.Context) {
	p, err := ParsePath(c.Param("path"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, ErrCodeNameInvalid, "invalid repository path", nil)
		return
	}

	switch p.Type {
	case PathTypeBase:
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			abortWithError(c, http.StatusMethodNotAllowed, ErrCodeUnsupported, "method not allowed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	case PathTypeManifest:
		switch c.Request.Method {
		case http.MethodHead:
			s.headManifest(c, p)
		case http.MethodGet:
			s.getManifest(c, p)
		case http.MethodPut:
			s.putManifest(c, p)
		case http.MethodDelete:
			s.deleteManifest(c, p)
		default:
			abortWithError(c, http.StatusMethodNotAllowed, ErrCodeUnsupported, "method not allowed", nil)
		}
	default:
		abortWithError(c, http.StatusMethodNotAllowed, ErrCodeUnsupported, "only manifest operations are supported", nil)
	}
}

func (s *Server) headManifest(c *gin.Context, p Path) {
	ok, err := s.store.Exists(c.Request.Context(), s.backend, p.Name, p.Reference)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	if name.IsDigest(p.Reference) {
		c.Header(ContentDigestHeader, p.Reference)
	}
	c.Status(http.StatusOK)
}

func (s *Server) getManifest(c *gin.Context, p Path) {
	m, err := s.store.Resolve(c.Request.Context(), s.backend, p.Name, p.Reference)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	body, err := json.Marshal(manifest.ToOCI(m))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	mediaType := m.MediaType
	if mediaType == "" {
		mediaType = imgspecv1.MediaTypeImageManifest
	}
	c.Header(ContentDigestHeader, m.Digest().String())
	c.Data(http.StatusOK, mediaType, body)
}

func (s *Server) putManifest(c *gin.Context, p Path) {
	if err := name.ValidateRepositoryName(p.Name); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeNameInvalid, "invalid repository name", p.Name)
		return
	}

	content, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxManifestSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abortWithError(c, http.StatusRequestEntityTooLarge, ErrCodeSizeInvalid,
				"manifest too large", gin.H{"limit": maxErr.Limit})
			return
		}
		abortWithError(c, http.StatusBadRequest, ErrCodeManifestInvalid, "failed to read manifest", nil)
		return
	}
	m, err := manifest.Parse(content)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeManifestInvalid, "manifest invalid", err.Error())
		return
	}

	dgst, err := s.store.Put(c.Request.Context(), s.backend, p.Name, p.Reference, m)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Header("Location", "/v2/"+p.Name+"/manifests/"+dgst.String())
	c.Header(ContentDigestHeader, dgst.String())
	c.Status(http.StatusCreated)
}

func (s *Server) deleteManifest(c *gin.Context, p Path) {
	n, err := s.store.Delete(c.Request.Context(), s.backend, p.Name, p.Reference)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	if n == 0 {
		abortWithError(c, http.StatusNotFound, ErrCodeManifestUnknown, "manifest unknown", nil)
		return
	}
	c.Header("X-Removed-Keys", strconv.FormatInt(n, 10))
	c.Status(http.StatusAccepted)
}
