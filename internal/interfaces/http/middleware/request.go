package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes it in the
// response and stores it in the request context for logs and audit events.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Header(constants.HeaderRequestID, requestID)
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID))
		c.Next()
	}
}

// Logging logs every request once it has been served.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "Request failed", fields)
			return
		}
		log.Info(c.Request.Context(), "Request processed", fields)
	}
}

// Recovery turns a panic into a 500 server_error response.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(c.Request.Context(), "Panic recovered", fmt.Errorf("panic: %v", rec), logger.Fields{
					"path": c.Request.URL.Path,
				})
				status, body := errors.ToErrorResponse(errors.ErrServerError("internal error"))
				c.AbortWithStatusJSON(status, body)
			}
		}()
		c.Next()
	}
}
