package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/domain/transaction"
	"github.com/txnhub/txnhub/internal/domain/user"
	"github.com/txnhub/txnhub/internal/http/middlewares"
)

type TransactionsStore interface {
	Create(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error)
	List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error)
	GetByID(ctx context.Context, id string) (transaction.Transaction, error)
	Update(ctx context.Context, id string, req transaction.UpdateTransactionRequest) (transaction.Transaction, error)
	Delete(ctx context.Context, id string) error
}

type TransactionsHandler struct {
	repo TransactionsStore
}

func NewTransactionsHandler(repo TransactionsStore) *TransactionsHandler {
	return &TransactionsHandler{repo: repo}
}

func (h *TransactionsHandler) CreateTransaction(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req transaction.CreateTransactionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// ownership comes from the principal, never from the payload
	tx, err := transaction.NewFromCreateRequest(req, principal.ID)

	if err != nil {
		RespondValidationError(ctx, gin.H{"fields": []FieldError{
			{Field: "date", Rule: "datetime", Message: "must be a date formatted as 2006-01-02"},
		}})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	created, err := h.repo.Create(cctx, tx)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// ListTransactions is implicitly owner-scoped for non-admin principals; the
// optional q / min_amount / max_amount filters are AND-combined on top.
func (h *TransactionsHandler) ListTransactions(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	if principal.Role != user.RoleAdmin {
		ownerID := principal.ID
		filter.OwnerID = &ownerID
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	items, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *TransactionsHandler) GetTransaction(ctx *gin.Context) {
	_, tx, ok := h.loadAuthorized(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, tx)
}

func (h *TransactionsHandler) UpdateTransaction(ctx *gin.Context) {
	_, tx, ok := h.loadAuthorized(ctx)

	if !ok {
		return
	}

	var req transaction.UpdateTransactionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	updated, err := h.repo.Update(cctx, tx.ID, req)

	if err != nil {
		// deleted between the ownership check and the update
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *TransactionsHandler) DeleteTransaction(ctx *gin.Context) {
	_, tx, ok := h.loadAuthorized(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, tx.ID)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// loadAuthorized fetches the addressed transaction and enforces the
// ownership-or-admin rule. An unknown id is a 404 for everyone; an existing
// foreign record is a 403, the same across get, update and delete.
func (h *TransactionsHandler) loadAuthorized(ctx *gin.Context) (user.User, transaction.Transaction, bool) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return user.User{}, transaction.Transaction{}, false
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	tx, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return user.User{}, transaction.Transaction{}, false
		}

		RespondInternal(ctx)
		return user.User{}, transaction.Transaction{}, false
	}

	if !principal.CanAccess(tx.OwnerID) {
		RespondForbidden(ctx)
		return user.User{}, transaction.Transaction{}, false
	}

	return principal, tx, true
}

func parseListFilter(ctx *gin.Context) (transaction.ListFilter, bool) {
	var filter transaction.ListFilter

	if q := ctx.Query("q"); q != "" {
		filter.Query = &q
	}

	for _, bound := range []struct {
		param string
		dest  **float64
	}{
		{"min_amount", &filter.MinAmount},
		{"max_amount", &filter.MaxAmount},
	} {
		raw := ctx.Query(bound.param)

		if raw == "" {
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)

		if err != nil || v <= 0 {
			RespondValidationError(ctx, gin.H{"fields": []FieldError{
				{Field: bound.param, Rule: "gt", Param: "0", Message: "must be a number greater than 0"},
			}})
			return transaction.ListFilter{}, false
		}

		*bound.dest = &v
	}

	return filter, true
}
