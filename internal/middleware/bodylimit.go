package middleware

import (
	"net/http"

	"vidtube/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request body size. Multipart upload endpoints get their
// own, larger limit, so this only wraps JSON routes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() == "multipart/form-data" {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body exceeds limit")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}
