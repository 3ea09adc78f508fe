package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/http/middlewares"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondInvalidCredentials is shared by every authentication failure so an
// unknown email, a wrong password and a bad token are indistinguishable from
// the outside.
func RespondInvalidCredentials(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context) {
	RespondError(ctx, http.StatusForbidden, "forbidden", "Forbidden", nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondValidationError(ctx *gin.Context, details interface{}) {
	RespondError(ctx, http.StatusUnprocessableEntity, "validation_error", "Invalid request body", details)
}

// RespondInternal keeps the client-facing message generic; the real failure
// is logged server-side only.
func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", "An error occurred", nil)
}
