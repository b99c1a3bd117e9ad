package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

// KeyFunc returns the currently accepted API key. It is consulted on every request so
// that a reloaded configuration takes effect without restarting the server.
type KeyFunc func() string

// APIKey rejects requests whose API-Key header does not match the current key.
// An empty configured key rejects everything.
func APIKey(key KeyFunc, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := key()
		provided := c.GetHeader(constants.HeaderAPIKey)
		if expected == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			log.Warn(c.Request.Context(), "Rejected webhook call", logger.Fields{
				"path":        c.Request.URL.Path,
				"client_ip":   c.ClientIP(),
				"key_present": provided != "",
			})
			status, body := errors.ToErrorResponse(errors.ErrUnauthorized("missing or invalid API key"))
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}
