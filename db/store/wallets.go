package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// scanner lets one scan helper serve both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type GetWalletParams struct {
	UserID   int64
	Currency string
}

type CreateWalletParams struct {
	UserID   int64
	Currency string
}

type UpdateWalletBalancesParams struct {
	ID            uuid.UUID
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
}

const walletColumns = `id, user_id, currency, balance, locked_balance, status, created_at, updated_at`

func scanWallet(s scanner) (Wallet, error) {
	var w Wallet
	var balance, locked string
	err := s.Scan(&w.ID, &w.UserID, &w.Currency, &balance, &locked, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return Wallet{}, mapError(err)
	}
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return Wallet{}, err
	}
	if w.LockedBalance, err = decimal.NewFromString(locked); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

const getWallet = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2`

func (q *Queries) GetWallet(ctx context.Context, arg GetWalletParams) (Wallet, error) {
	return scanWallet(q.db.QueryRowContext(ctx, getWallet, arg.UserID, arg.Currency))
}

const getWalletForUpdate = getWallet + ` FOR UPDATE`

// GetWalletForUpdate takes a row lock so concurrent balance mutations on the
// same wallet serialize. Only meaningful inside ExecTx.
func (q *Queries) GetWalletForUpdate(ctx context.Context, arg GetWalletParams) (Wallet, error) {
	return scanWallet(q.db.QueryRowContext(ctx, getWalletForUpdate, arg.UserID, arg.Currency))
}

const createWallet = `
INSERT INTO wallets (user_id, currency)
VALUES ($1, $2)
ON CONFLICT (user_id, currency) DO NOTHING
RETURNING ` + walletColumns

// CreateWallet inserts a zero wallet. When a concurrent unit created the row
// first the insert is a no-op and ErrNotFound comes back; no unique violation
// is raised, so the caller's transaction stays usable and can re-read the row
// under lock.
func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) (Wallet, error) {
	return scanWallet(q.db.QueryRowContext(ctx, createWallet, arg.UserID, arg.Currency))
}

const updateWalletBalances = `
UPDATE wallets
SET balance = $2, locked_balance = $3, updated_at = now()
WHERE id = $1
RETURNING ` + walletColumns

func (q *Queries) UpdateWalletBalances(ctx context.Context, arg UpdateWalletBalancesParams) (Wallet, error) {
	return scanWallet(q.db.QueryRowContext(ctx, updateWalletBalances,
		arg.ID, arg.Balance.String(), arg.LockedBalance.String()))
}

const listWalletsByUser = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY currency`

func (q *Queries) ListWalletsByUser(ctx context.Context, userID int64) ([]Wallet, error) {
	rows, err := q.db.QueryContext(ctx, listWalletsByUser, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
