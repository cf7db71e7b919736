package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "pomodoro/desktop/internal/errors"
)

// writeError renders the {"error": {...}} envelope. A nil error is reported
// as a 500.
func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}

func writeInvalidBody(c *gin.Context) {
	writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
}
