package transaction

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("transaction not found")

type Transaction struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        Date      `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// optional filters, combined with AND; OwnerID is set by the handler for
// non-admin principals, never by the client
type ListFilter struct {
	OwnerID   *string
	Query     *string
	MinAmount *float64
	MaxAmount *float64
}

type CreateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"required,max=255"`
	Date        string  `json:"date" binding:"required,datetime=2006-01-02"`
}

// partial update payload: nil fields are left untouched, supplied fields are
// re-validated with the same constraints as creation
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
	Date        *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

func (r UpdateTransactionRequest) Empty() bool {
	return r.Amount == nil && r.Description == nil && r.Date == nil
}
