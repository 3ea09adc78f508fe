package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/auth"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/domain/user"
	"github.com/txnhub/txnhub/internal/http/middlewares"
	"github.com/txnhub/txnhub/internal/observability"
	"github.com/txnhub/txnhub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthHandler struct {
	users   UserReader
	jwt     *auth.Manager
	metrics *observability.Prom
}

func NewAuthHandler(users UserReader, jwtManager *auth.Manager, metrics *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:   users,
		jwt:     jwtManager,
		metrics: metrics,
	}
}

// OAuth2 password flow shape: credentials arrive form-encoded, the email
// travels in the username field.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. Unknown email and wrong
// password take different paths but produce byte-identical responses, so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBind(&req); err != nil {
		RespondValidationError(ctx, parseBindError(err, &req))
		return
	}

	// short timeout for the DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Username)
	if err != nil {
		h.metrics.IncAuth("login", "denied")
		RespondInvalidCredentials(ctx)
		return
	}

	if !security.CheckPassword(foundUser.PasswordHash, req.Password) {
		h.metrics.IncAuth("login", "denied")
		RespondInvalidCredentials(ctx)
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Email, string(foundUser.Role))

	if err != nil {
		RespondInternal(ctx)
		return
	}

	h.metrics.IncAuth("login", "ok")

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}

// Whoami echoes the resolved principal's profile.
func (h *AuthHandler) Whoami(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, principal)
}
