package registryhttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wuxler/rregistry/pkg/errdefs"
)

// Error codes of the OCI distribution API used by this server.
const (
	ErrCodeManifestInvalid = "MANIFEST_INVALID"
	ErrCodeManifestUnknown = "MANIFEST_UNKNOWN"
	ErrCodeNameInvalid     = "NAME_INVALID"
	ErrCodeSizeInvalid     = "SIZE_INVALID"
	ErrCodeUnsupported     = "UNSUPPORTED"
	// ErrCodeUnavailable and ErrCodeUnknown are not part of the distribution
	// spec, clients only look at the status code for them.
	ErrCodeUnavailable = "UNAVAILABLE"
	ErrCodeUnknown     = "UNKNOWN"
)

// ErrorDescriptor represents an OCI registry error.
type ErrorDescriptor struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

// ErrorResponse represents the OCI error response body.
type ErrorResponse struct {
	Errors []ErrorDescriptor `json:"errors"`
}

// abortWithError writes an OCI error response and stops the handler chain. HEAD
// requests get the status only.
func abortWithError(c *gin.Context, status int, code string, message string, detail any) {
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Errors: []ErrorDescriptor{{Code: code, Message: message, Detail: detail}},
	})
}

// abortWithStoreError maps an error returned by the manifest store to a response.
// Not found errors never carry details, so validation failures look the same as
// missing manifests.
func abortWithStoreError(c *gin.Context, err error) {
	switch {
	case errdefs.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "storage backend unavailable", nil)
	case errdefs.IsDataLoss(err):
		abortWithError(c, http.StatusInternalServerError, ErrCodeUnknown, "stored manifest is corrupted", nil)
	case errdefs.IsNotFound(err):
		abortWithError(c, http.StatusNotFound, ErrCodeManifestUnknown, "manifest unknown", nil)
	case errors.Is(err, errdefs.ErrInvalidParameter):
		abortWithError(c, http.StatusBadRequest, ErrCodeManifestInvalid, "manifest invalid", err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, ErrCodeUnknown, "internal error", nil)
	}
	_ = c.Error(err) //nolint:errcheck // recorded for the request logger
}
