package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReferralCommissionParams struct {
	UserID              int64
	ReferralID          int64
	Amount              decimal.Decimal
	Currency            string
	Type                string
	Level               int32
	Status              string
	SourceTransactionID uuid.UUID
	TransactionID       uuid.NullUUID
}

type UpdateReferralCommissionStatusParams struct {
	ID     int64
	Status string
}

type ListCommissionsByUserParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

const commissionColumns = `id, user_id, referral_id, amount, currency, type, level, status,
	source_transaction_id, transaction_id, created_at, updated_at`

func scanCommission(s scanner) (ReferralCommission, error) {
	var c ReferralCommission
	var amount string
	err := s.Scan(&c.ID, &c.UserID, &c.ReferralID, &amount, &c.Currency, &c.Type, &c.Level, &c.Status,
		&c.SourceTransactionID, &c.TransactionID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return ReferralCommission{}, mapError(err)
	}
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return ReferralCommission{}, err
	}
	return c, nil
}

const createReferralCommission = `
INSERT INTO referral_commissions (user_id, referral_id, amount, currency, type, level, status, source_transaction_id, transaction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + commissionColumns

func (q *Queries) CreateReferralCommission(ctx context.Context, arg CreateReferralCommissionParams) (ReferralCommission, error) {
	return scanCommission(q.db.QueryRowContext(ctx, createReferralCommission,
		arg.UserID, arg.ReferralID, arg.Amount.String(), arg.Currency, arg.Type, arg.Level,
		arg.Status, arg.SourceTransactionID, arg.TransactionID))
}

const updateReferralCommissionStatus = `
UPDATE referral_commissions
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + commissionColumns

func (q *Queries) UpdateReferralCommissionStatus(ctx context.Context, arg UpdateReferralCommissionStatusParams) (ReferralCommission, error) {
	return scanCommission(q.db.QueryRowContext(ctx, updateReferralCommissionStatus, arg.ID, arg.Status))
}

const listCommissionsByUser = `
SELECT ` + commissionColumns + `
FROM referral_commissions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

func (q *Queries) ListCommissionsByUser(ctx context.Context, arg ListCommissionsByUserParams) ([]ReferralCommission, error) {
	return q.queryCommissions(ctx, listCommissionsByUser, arg.UserID, arg.Limit, arg.Offset)
}

const listCommissionsBySource = `
SELECT ` + commissionColumns + `
FROM referral_commissions
WHERE source_transaction_id = $1
ORDER BY level`

func (q *Queries) ListCommissionsBySource(ctx context.Context, sourceTransactionID uuid.UUID) ([]ReferralCommission, error) {
	return q.queryCommissions(ctx, listCommissionsBySource, sourceTransactionID)
}

func (q *Queries) queryCommissions(ctx context.Context, query string, args ...interface{}) ([]ReferralCommission, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var commissions []ReferralCommission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}
