package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/desktop/internal/errors"
	"pomodoro/desktop/internal/service"
)

// Auth requires a bearer token issued by authService. When the service has
// no control password configured every request passes through.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			writeError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		if _, apiErr := authService.ParseToken(token); apiErr != nil {
			writeError(c, apiErr)
			return
		}

		c.Next()
	}
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}
