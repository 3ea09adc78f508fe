package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/txnhub/txnhub/internal/domain/transaction"
	"github.com/txnhub/txnhub/internal/observability"
)

type TransactionsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewTransactionsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *TransactionsRepo {
	return &TransactionsRepo{pool: pool, metrics: metrics}
}

func (r *TransactionsRepo) Create(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error) {
	err := r.metrics.ObserveDB("transactions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transactions (id, owner_id, amount, description, date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			tx.ID, tx.OwnerID, tx.Amount, tx.Description, tx.Date.Time, tx.CreatedAt,
		)
		return err
	})

	if err != nil {
		return transaction.Transaction{}, err
	}

	return tx, nil
}

func (r *TransactionsRepo) List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	baseQuery := `SELECT id, owner_id, amount, description, date, created_at
	FROM transactions
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// ownership scope, set by the handler for non-admin principals
	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	// description substring, parameterized

	if filter.Query != nil {
		conds = append(conds, fmt.Sprintf("description ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, *filter.Query)
		argsPosition++
	}

	// inclusive amount bounds

	if filter.MinAmount != nil {
		conds = append(conds, fmt.Sprintf("amount >= $%d", argsPosition))
		args = append(args, *filter.MinAmount)
		argsPosition++
	}

	if filter.MaxAmount != nil {
		conds = append(conds, fmt.Sprintf("amount <= $%d", argsPosition))
		args = append(args, *filter.MaxAmount)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY date DESC, id DESC"

	var output []transaction.Transaction

	err := r.metrics.ObserveDB("transactions.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]transaction.Transaction, 0)

		for rows.Next() {
			tx, err := scanTransaction(rows)

			if err != nil {
				return err
			}

			output = append(output, tx)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *TransactionsRepo) GetByID(ctx context.Context, id string) (transaction.Transaction, error) {
	var tx transaction.Transaction

	err := r.metrics.ObserveDB("transactions.get_by_id", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT id, owner_id, amount, description, date, created_at
			 FROM transactions
			 WHERE id = $1`,
			id,
		)

		var err error
		tx, err = scanTransaction(row)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return tx, nil
}

// Update applies only the supplied fields. owner_id is deliberately absent
// from the SET list: ownership never moves.
func (r *TransactionsRepo) Update(ctx context.Context, id string, req transaction.UpdateTransactionRequest) (transaction.Transaction, error) {
	if req.Empty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []interface{}

	args = append(args, id)
	argsPosition := 2

	if req.Amount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", argsPosition))
		args = append(args, *req.Amount)
		argsPosition++
	}

	if req.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argsPosition))
		args = append(args, *req.Description)
		argsPosition++
	}

	if req.Date != nil {
		date, err := transaction.ParseDate(*req.Date)

		if err != nil {
			return transaction.Transaction{}, err
		}

		sets = append(sets, fmt.Sprintf("date = $%d", argsPosition))
		args = append(args, date.Time)
		argsPosition++
	}

	query := fmt.Sprintf(
		`UPDATE transactions
		 SET %s
		 WHERE id = $1
		 RETURNING id, owner_id, amount, description, date, created_at`,
		strings.Join(sets, ", "),
	)

	var tx transaction.Transaction

	err := r.metrics.ObserveDB("transactions.update", func() error {
		row := r.pool.QueryRow(ctx, query, args...)

		var err error
		tx, err = scanTransaction(row)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return tx, nil
}

func (r *TransactionsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.metrics.ObserveDB("transactions.delete", func() error {
		result, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = result.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted the id never existed
	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (transaction.Transaction, error) {
	var tx transaction.Transaction
	var date time.Time

	err := row.Scan(
		&tx.ID,
		&tx.OwnerID,
		&tx.Amount,
		&tx.Description,
		&date,
		&tx.CreatedAt,
	)

	if err != nil {
		return transaction.Transaction{}, err
	}

	tx.Date = transaction.Date{Time: date}
	return tx, nil
}
