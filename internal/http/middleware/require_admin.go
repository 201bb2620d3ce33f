package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const HeaderAdminToken = "X-Admin-Token"

// RequireAdmin gates the gateway behind a single admin API token,
// stored as a bcrypt hash. The dashboard's own login flow lives in the
// upstream service; the gateway only verifies the shared token.
func RequireAdmin(tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenHash == "" {
			// unset hash means auth is off (local development)
			c.Next()
			return
		}

		token := c.GetHeader(HeaderAdminToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "authentication required",
				"request_id": GetRequestID(c),
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Next()
	}
}
