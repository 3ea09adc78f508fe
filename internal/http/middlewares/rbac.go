package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/domain/user"
)

// RequireRole gates a route on the resolved principal's role. 403, not 401:
// the caller is authenticated, just not allowed.
func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)

		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if principal.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}
