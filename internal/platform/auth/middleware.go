package auth

import (
	"strings"

	httpPlatform "github.com/davidkwan/orggraph/internal/platform/http"
	"github.com/gin-gonic/gin"
)

// WriteAccessMiddleware validates the bearer token guarding write endpoints
// (bulk ingest, parent-link update). Query endpoints are left open; this domain has no
// per-record access control, only a single write/no-write boundary.
func WriteAccessMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpPlatform.RespondWithError(c, 401, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpPlatform.RespondWithError(c, 401, "UNAUTHORIZED", "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			httpPlatform.RespondWithError(c, 401, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// GetSubject extracts the authorized caller's subject from context.
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get("subject")
	if !exists {
		return "", false
	}
	return subject.(string), true
}
