package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes an API payload. API bodies carry per-user listings and
// ownership results, so they are never stored by shared caches; object bytes
// set their own Cache-Control in the objects package.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// OK writes a 200 API payload.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// NoContent finishes a request that has no body, e.g. a content delete.
func NoContent(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusNoContent)
}
