package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/auth"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type PrincipalLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users PrincipalLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users PrincipalLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth verifies the bearer token and resolves the acting principal
// against the store. The store lookup is what catches users deleted (or
// re-roled) after the token was issued: the row, not the claim, is the
// source of truth for the role.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		principal, err := m.users.GetByID(cctx, claims.Subject)
		if err != nil {
			// a vanished user gets the same response as a bad token
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func SetPrincipal(c *gin.Context, principal user.User) {
	c.Set(ctxPrincipalKey, principal)
}

func PrincipalFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return user.User{}, false
	}
	principal, ok := v.(user.User)
	return principal, ok
}
