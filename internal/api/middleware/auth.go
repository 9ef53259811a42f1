package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"homepath/api/internal/auth"
)

const (
	// ContextKeyUserID holds the token subject. For clients this is the
	// verified phone number, for admins the admin user id.
	ContextKeyUserID = "userID"
	// ContextKeyIsAdmin holds the key for admin status in Gin context.
	ContextKeyIsAdmin = "isAdmin"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

// bearerToken extracts the token from an Authorization header.
// present reports whether any Authorization header was sent.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", true, false
	}
	return parts[1], true, true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextKeyUserID, claims.Subject)
	c.Set(ContextKeyIsAdmin, claims.IsAdmin())
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if !present {
			abortUnauthorized(c, "Authorization header required")
			return
		}
		if !ok {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is sent but lets
// anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !ok {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}
		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// AdminMiddleware creates a Gin middleware to check for admin privileges.
// Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextKeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Administrator privileges required"})
			return
		}
		c.Next()
	}
}

// ClientMiddleware rejects admin tokens on routes that act for a home buyer.
func ClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyUserID) == "" || c.GetBool(ContextKeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Client session required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
