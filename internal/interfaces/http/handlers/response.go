package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/appauth/pkg/errors"
)

// sendError writes the JSON error body for err and attaches err to the context for the access log.
func sendError(c *gin.Context, err error) {
	status, body := errors.ToErrorResponse(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
