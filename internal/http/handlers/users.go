package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/domain/user"
	"github.com/txnhub/txnhub/internal/http/middlewares"
	"github.com/txnhub/txnhub/internal/security"
)

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type UsersHandler struct {
	writer UserWriter
}

func NewUsersHandler(writer UserWriter) *UsersHandler {
	return &UsersHandler{writer: writer}
}

// CreateUser is admin-only; the role gate runs in middleware before this is
// reached. Duplicate emails surface from the store's unique constraint, not
// from a lookup here.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	created, err := h.writer.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email already registered")
			return
		}

		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// Me returns the calling principal's own profile.
func (h *UsersHandler) Me(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, principal)
}
