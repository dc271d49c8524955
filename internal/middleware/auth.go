// auth.go provides Gin middleware that authenticates requests with a JWT
// bearer token and exposes the authenticated user's ID to downstream handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gatherhub/gatherhub/internal/auth"
)

const (
	// UserIDKey is the gin.Context key holding the authenticated user's ID.
	UserIDKey = "user_id"
	// UserEmailKey is the gin.Context key holding the authenticated user's email.
	UserEmailKey = "user_email"
)

// AuthMiddleware returns a Gin handler that requires a valid Bearer token.
// On success the token's user ID and email are stored in the context under
// UserIDKey and UserEmailKey; on failure the request is aborted with 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be 'Bearer <token>'"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID from the context, or the
// empty string when the request was not authenticated.
func CurrentUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
