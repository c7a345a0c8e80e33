package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthorityHeader carries the caller's identity. The store derives the
// root lookup key from it, so a forged identity simply resolves to a
// different (usually nonexistent) root; it can never reach someone else's.
const AuthorityHeader = "X-Authority"

// Authority requires the identity header on every request it guards and
// stashes it in the context for handlers.
func Authority() gin.HandlerFunc {
	return func(c *gin.Context) {
		authority := c.GetHeader(AuthorityHeader)
		if authority == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + AuthorityHeader + " header"})
			c.Abort()
			return
		}
		c.Set("authority", authority)
		c.Next()
	}
}

// CallerAuthority returns the identity stashed by Authority.
func CallerAuthority(c *gin.Context) string {
	return c.GetString("authority")
}
