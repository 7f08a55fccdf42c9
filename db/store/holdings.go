package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type CreateMiningHoldingParams struct {
	UserID          int64
	PackageID       int64
	Amount          decimal.Decimal
	Currency        string
	MiningPower     decimal.Decimal
	DailyRewardRate decimal.Decimal
	StartDate       time.Time
	EndDate         sql.NullTime
	Status          string
}

type SumActiveMiningPowerParams struct {
	UserID int64
	AsOf   time.Time
}

type UpdateHoldingStatusParams struct {
	ID     int64
	Status string
}

const holdingColumns = `id, user_id, package_id, amount, currency, mining_power, daily_reward_rate,
	start_date, end_date, status, created_at, updated_at`

func scanHolding(s scanner) (MiningHolding, error) {
	var h MiningHolding
	var amount, power, rate string
	err := s.Scan(&h.ID, &h.UserID, &h.PackageID, &amount, &h.Currency, &power, &rate,
		&h.StartDate, &h.EndDate, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return MiningHolding{}, mapError(err)
	}
	if h.Amount, err = decimal.NewFromString(amount); err != nil {
		return MiningHolding{}, err
	}
	if h.MiningPower, err = decimal.NewFromString(power); err != nil {
		return MiningHolding{}, err
	}
	if h.DailyRewardRate, err = decimal.NewFromString(rate); err != nil {
		return MiningHolding{}, err
	}
	return h, nil
}

const createMiningHolding = `
INSERT INTO mining_holdings (user_id, package_id, amount, currency, mining_power, daily_reward_rate, start_date, end_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + holdingColumns

func (q *Queries) CreateMiningHolding(ctx context.Context, arg CreateMiningHoldingParams) (MiningHolding, error) {
	return scanHolding(q.db.QueryRowContext(ctx, createMiningHolding,
		arg.UserID, arg.PackageID, arg.Amount.String(), arg.Currency, arg.MiningPower.String(),
		arg.DailyRewardRate.String(), arg.StartDate, arg.EndDate, arg.Status))
}

const getMiningHolding = `SELECT ` + holdingColumns + ` FROM mining_holdings WHERE id = $1`

func (q *Queries) GetMiningHolding(ctx context.Context, id int64) (MiningHolding, error) {
	return scanHolding(q.db.QueryRowContext(ctx, getMiningHolding, id))
}

const getMiningHoldingForUpdate = getMiningHolding + ` FOR UPDATE`

func (q *Queries) GetMiningHoldingForUpdate(ctx context.Context, id int64) (MiningHolding, error) {
	return scanHolding(q.db.QueryRowContext(ctx, getMiningHoldingForUpdate, id))
}

const listHoldingsByUser = `
SELECT ` + holdingColumns + ` FROM mining_holdings WHERE user_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListHoldingsByUser(ctx context.Context, userID int64) ([]MiningHolding, error) {
	return q.queryHoldings(ctx, listHoldingsByUser, userID)
}

const listActiveHoldings = `
SELECT ` + holdingColumns + `
FROM mining_holdings
WHERE status = 'active' AND (end_date IS NULL OR end_date >= $1)
ORDER BY user_id, id`

func (q *Queries) ListActiveHoldings(ctx context.Context, asOf time.Time) ([]MiningHolding, error) {
	return q.queryHoldings(ctx, listActiveHoldings, asOf)
}

const sumActiveMiningPower = `
SELECT COALESCE(SUM(mining_power), 0)
FROM mining_holdings
WHERE user_id = $1 AND status = 'active' AND (end_date IS NULL OR end_date >= $2)`

func (q *Queries) SumActiveMiningPower(ctx context.Context, arg SumActiveMiningPowerParams) (decimal.Decimal, error) {
	var power string
	if err := q.db.QueryRowContext(ctx, sumActiveMiningPower, arg.UserID, arg.AsOf).Scan(&power); err != nil {
		return decimal.Zero, mapError(err)
	}
	return decimal.NewFromString(power)
}

const expireHoldings = `
UPDATE mining_holdings
SET status = 'expired', updated_at = now()
WHERE status = 'active' AND end_date IS NOT NULL AND end_date < $1
RETURNING ` + holdingColumns

// ExpireHoldings transitions every active holding past its end date. Running
// it again with the same cutoff matches no rows.
func (q *Queries) ExpireHoldings(ctx context.Context, asOf time.Time) ([]MiningHolding, error) {
	return q.queryHoldings(ctx, expireHoldings, asOf)
}

const updateHoldingStatus = `
UPDATE mining_holdings
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + holdingColumns

func (q *Queries) UpdateHoldingStatus(ctx context.Context, arg UpdateHoldingStatusParams) (MiningHolding, error) {
	return scanHolding(q.db.QueryRowContext(ctx, updateHoldingStatus, arg.ID, arg.Status))
}

func (q *Queries) queryHoldings(ctx context.Context, query string, args ...interface{}) ([]MiningHolding, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var holdings []MiningHolding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
