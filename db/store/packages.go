package store

import (
	"context"

	"github.com/shopspring/decimal"
)

const packageColumns = `id, name, price, currency, mining_power, daily_reward_rate, duration_days, active, created_at, updated_at`

func scanPackage(s scanner) (MiningPackage, error) {
	var p MiningPackage
	var price, power, rate string
	err := s.Scan(&p.ID, &p.Name, &price, &p.Currency, &power, &rate, &p.DurationDays, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return MiningPackage{}, mapError(err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return MiningPackage{}, err
	}
	if p.MiningPower, err = decimal.NewFromString(power); err != nil {
		return MiningPackage{}, err
	}
	if p.DailyRewardRate, err = decimal.NewFromString(rate); err != nil {
		return MiningPackage{}, err
	}
	return p, nil
}

const getMiningPackage = `SELECT ` + packageColumns + ` FROM mining_packages WHERE id = $1`

func (q *Queries) GetMiningPackage(ctx context.Context, id int64) (MiningPackage, error) {
	return scanPackage(q.db.QueryRowContext(ctx, getMiningPackage, id))
}

const listActiveMiningPackages = `SELECT ` + packageColumns + ` FROM mining_packages WHERE active ORDER BY price`

func (q *Queries) ListActiveMiningPackages(ctx context.Context) ([]MiningPackage, error) {
	rows, err := q.db.QueryContext(ctx, listActiveMiningPackages)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var packages []MiningPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}
