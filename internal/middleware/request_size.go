package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-alert/pkg/utils"
)

// DefaultMaxRequestSize caps bodies at 1 MiB. The largest legitimate
// payload is a push token registration; nothing here uploads files.
const DefaultMaxRequestSize = 1 << 20

// RequestSizeLimitMiddleware limits the size of incoming requests to maxSize bytes.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
