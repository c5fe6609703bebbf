// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

// respondError maps a service error to an HTTP response
func respondError(c *gin.Context, err error) {
	appErr, ok := apperr.From(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	status := apperr.HTTPStatus(err)
	if len(appErr.Violations) > 0 {
		c.JSON(status, gin.H{
			"error":  appErr.Message,
			"errors": appErr.Violations,
		})
		return
	}

	c.JSON(status, gin.H{
		"error": appErr.Message,
	})
}

// respondBindError maps a gin binding failure to a 400 response
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
