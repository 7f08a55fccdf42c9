package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTransactionParams struct {
	ID          uuid.UUID
	UserID      int64
	Type        string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Currency    string
	Status      string
	ReferenceID string
	TxHash      sql.NullString
	RewardDate  sql.NullTime
	Description sql.NullString
}

type UpdateTransactionStatusParams struct {
	ID          uuid.UUID
	Status      string
	TxHash      sql.NullString
	ProcessedAt sql.NullTime
}

type ListTransactionsByUserParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

const transactionColumns = `id, user_id, type, amount, fee, currency, status, reference_id,
	tx_hash, reward_date, description, created_at, updated_at, processed_at`

func scanTransaction(s scanner) (Transaction, error) {
	var t Transaction
	var amount, fee string
	err := s.Scan(&t.ID, &t.UserID, &t.Type, &amount, &fee, &t.Currency, &t.Status, &t.ReferenceID,
		&t.TxHash, &t.RewardDate, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.ProcessedAt)
	if err != nil {
		return Transaction{}, mapError(err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, err
	}
	if t.Fee, err = decimal.NewFromString(fee); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

const createTransaction = `
INSERT INTO transactions (id, user_id, type, amount, fee, currency, status, reference_id, tx_hash, reward_date, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (reference_id) DO NOTHING
RETURNING ` + transactionColumns

// CreateTransaction inserts a journal row. A reference collision is a no-op
// insert reported as ErrDuplicateReference, without raising a unique
// violation, so the caller's transaction survives and can retry with a fresh
// reference. Violating the daily-reward index still surfaces as ErrDuplicate
// and fails the unit.
func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	t, err := scanTransaction(q.db.QueryRowContext(ctx, createTransaction,
		arg.ID, arg.UserID, arg.Type, arg.Amount.String(), arg.Fee.String(), arg.Currency,
		arg.Status, arg.ReferenceID, arg.TxHash, arg.RewardDate, arg.Description))
	if errors.Is(err, ErrNotFound) {
		return Transaction{}, ErrDuplicateReference
	}
	return t, err
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

func (q *Queries) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const getTransactionByReference = `SELECT ` + transactionColumns + ` FROM transactions WHERE reference_id = $1`

func (q *Queries) GetTransactionByReference(ctx context.Context, referenceID string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransactionByReference, referenceID))
}

const updateTransactionStatus = `
UPDATE transactions
SET status = $2,
    tx_hash = COALESCE($3, tx_hash),
    processed_at = COALESCE($4, processed_at),
    updated_at = now()
WHERE id = $1
RETURNING ` + transactionColumns

func (q *Queries) UpdateTransactionStatus(ctx context.Context, arg UpdateTransactionStatusParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, updateTransactionStatus,
		arg.ID, arg.Status, arg.TxHash, arg.ProcessedAt))
}

const listTransactionsByUser = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

func (q *Queries) ListTransactionsByUser(ctx context.Context, arg ListTransactionsByUserParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
