package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/auth"
)

// ContextKeyUserID is where AuthMiddleware stores the caller's user ID.
const ContextKeyUserID = "u_id"

// AuthMiddleware returns a Gin middleware that validates bearer tokens.
//
// An invalid or missing token aborts the chain with a 401; the handler
// never runs. A valid one stores the user ID in the gin context.
//
// The secret is a parameter so the middleware never imports config and
// tests can pass any key.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed authorization, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a WebSocket upgrade, so a ?token= query parameter is accepted
// as a fallback.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); q != "" {
			return q, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID returns the authenticated user, or 0 when the middleware did
// not run. User IDs start at 1, so 0 never matches a real account.
func GetUserID(c *gin.Context) int {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	id, ok := val.(int)
	if !ok {
		return 0
	}
	return id
}
