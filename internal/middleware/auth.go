package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-alert/internal/config"
	"vehicle-alert/pkg/utils"
)

// DeviceIDKey is the context key carrying the authenticated device ID.
const DeviceIDKey = "deviceID"

// AuthMiddleware validates the bearer token and stores the device ID in
// the request context. The token subject is the only identity a request
// ever carries; no user accounts exist.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		deviceID, err := utils.ValidateDeviceToken(parts[1], cfg.JWT.Secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}

// GetDeviceID retrieves the authenticated device ID from the Gin
// context. The boolean is false on unauthenticated routes.
func GetDeviceID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(DeviceIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
