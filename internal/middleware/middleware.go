package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHeader is set by the API gateway after it verifies the caller's
// token. Requests arriving without it never passed the gateway.
const UserHeader = "X-User-ID"

// RequireUser rejects requests that carry no authenticated user id and
// stores the id in the context for handlers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// UserID reads the authenticated user id stored by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}
