package transaction

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a transaction owned by ownerID. The request
// carries no owner field at all, so a client cannot spoof ownership.
func NewFromCreateRequest(req CreateTransactionRequest, ownerID string) (Transaction, error) {
	date, err := ParseDate(req.Date)

	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
