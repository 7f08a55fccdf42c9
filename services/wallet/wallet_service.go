// Package wallet is the balance ledger. It is the only component allowed to
// mutate wallet rows; every other service requests changes through it. All
// mutations run inside an atomic unit with the wallet row locked, so a
// failure anywhere in the unit leaves the row untouched.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/shopspring/decimal"
)

type Service struct {
	store  store.Store
	logger *logging.Logger
}

func NewWalletService(store store.Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// GetOrCreate returns the (user, currency) wallet, creating it with a zero
// balance when absent.
func (s *Service) GetOrCreate(ctx context.Context, userID int64, currency string) (*WalletModel, error) {
	var w store.Wallet
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		w, err = getOrCreate(ctx, q, userID, currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToWalletModel(w), nil
}

func (s *Service) GetWallet(ctx context.Context, userID int64, currency string) (*WalletModel, error) {
	w, err := s.store.GetWallet(ctx, store.GetWalletParams{UserID: userID, Currency: currency})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToWalletModel(w), nil
}

func (s *Service) ListWallets(ctx context.Context, userID int64) ([]*WalletModel, error) {
	rows, err := s.store.ListWalletsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallets := make([]*WalletModel, len(rows))
	for i, w := range rows {
		wallets[i] = ToWalletModel(w)
	}
	return wallets, nil
}

// Credit increases the wallet balance. Credits never fail for lack of funds;
// the wallet is created on first credit.
func (s *Service) Credit(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*WalletModel, error) {
	return s.mutate(ctx, func(ctx context.Context, q store.Querier) (store.Wallet, error) {
		return CreditInTx(ctx, q, userID, currency, amount)
	})
}

// Debit decreases the wallet balance, failing with ErrInsufficientFunds when
// the available balance does not cover the amount.
func (s *Service) Debit(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*WalletModel, error) {
	return s.mutate(ctx, func(ctx context.Context, q store.Querier) (store.Wallet, error) {
		return DebitInTx(ctx, q, userID, currency, amount)
	})
}

// Lock reserves part of the available balance without changing the total.
func (s *Service) Lock(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*WalletModel, error) {
	return s.mutate(ctx, func(ctx context.Context, q store.Querier) (store.Wallet, error) {
		return LockInTx(ctx, q, userID, currency, amount)
	})
}

// Unlock releases previously locked funds back to available.
func (s *Service) Unlock(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*WalletModel, error) {
	return s.mutate(ctx, func(ctx context.Context, q store.Querier) (store.Wallet, error) {
		return UnlockInTx(ctx, q, userID, currency, amount)
	})
}

// Transfer debits one user and credits another in a single unit; a failed
// credit rolls the debit back.
func (s *Service) Transfer(ctx context.Context, fromUser, toUser int64, currency string, amount decimal.Decimal) error {
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		if _, err := DebitInTx(ctx, q, fromUser, currency, amount); err != nil {
			return err
		}
		_, err := CreditInTx(ctx, q, toUser, currency, amount)
		return err
	})
	if err != nil {
		return fmt.Errorf("transfer %s %s from %d to %d: %w", amount, currency, fromUser, toUser, err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, fn func(ctx context.Context, q store.Querier) (store.Wallet, error)) (*WalletModel, error) {
	var w store.Wallet
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		w, err = fn(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToWalletModel(w), nil
}

// In-transaction primitives. Flows that pair a ledger mutation with journal
// writes (purchase, reward payout, commissions) call these inside their own
// ExecTx so everything commits or rolls back together.

func getOrCreate(ctx context.Context, q store.Querier, userID int64, currency string) (store.Wallet, error) {
	w, err := q.GetWalletForUpdate(ctx, store.GetWalletParams{UserID: userID, Currency: currency})
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Wallet{}, err
	}

	w, err = q.CreateWallet(ctx, store.CreateWalletParams{UserID: userID, Currency: currency})
	if errors.Is(err, store.ErrNotFound) {
		// Lost a create race; the insert was a no-op and the row exists now.
		return q.GetWalletForUpdate(ctx, store.GetWalletParams{UserID: userID, Currency: currency})
	}
	return w, err
}

func CreditInTx(ctx context.Context, q store.Querier, userID int64, currency string, amount decimal.Decimal) (store.Wallet, error) {
	if !amount.IsPositive() {
		return store.Wallet{}, ErrInvalidAmount
	}

	w, err := getOrCreate(ctx, q, userID, currency)
	if err != nil {
		return store.Wallet{}, err
	}
	if w.Status != StatusActive {
		return store.Wallet{}, ErrWalletInactive
	}

	return q.UpdateWalletBalances(ctx, store.UpdateWalletBalancesParams{
		ID:            w.ID,
		Balance:       w.Balance.Add(amount),
		LockedBalance: w.LockedBalance,
	})
}

func DebitInTx(ctx context.Context, q store.Querier, userID int64, currency string, amount decimal.Decimal) (store.Wallet, error) {
	if !amount.IsPositive() {
		return store.Wallet{}, ErrInvalidAmount
	}

	w, err := lockedActiveWallet(ctx, q, userID, currency)
	if err != nil {
		return store.Wallet{}, err
	}

	available := w.Balance.Sub(w.LockedBalance)
	if available.LessThan(amount) {
		return store.Wallet{}, ErrInsufficientFunds
	}

	return q.UpdateWalletBalances(ctx, store.UpdateWalletBalancesParams{
		ID:            w.ID,
		Balance:       w.Balance.Sub(amount),
		LockedBalance: w.LockedBalance,
	})
}

func LockInTx(ctx context.Context, q store.Querier, userID int64, currency string, amount decimal.Decimal) (store.Wallet, error) {
	if !amount.IsPositive() {
		return store.Wallet{}, ErrInvalidAmount
	}

	w, err := lockedActiveWallet(ctx, q, userID, currency)
	if err != nil {
		return store.Wallet{}, err
	}

	available := w.Balance.Sub(w.LockedBalance)
	if available.LessThan(amount) {
		return store.Wallet{}, ErrInsufficientFunds
	}

	return q.UpdateWalletBalances(ctx, store.UpdateWalletBalancesParams{
		ID:            w.ID,
		Balance:       w.Balance,
		LockedBalance: w.LockedBalance.Add(amount),
	})
}

func UnlockInTx(ctx context.Context, q store.Querier, userID int64, currency string, amount decimal.Decimal) (store.Wallet, error) {
	if !amount.IsPositive() {
		return store.Wallet{}, ErrInvalidAmount
	}

	w, err := lockedActiveWallet(ctx, q, userID, currency)
	if err != nil {
		return store.Wallet{}, err
	}

	if w.LockedBalance.LessThan(amount) {
		return store.Wallet{}, ErrOverUnlock
	}

	return q.UpdateWalletBalances(ctx, store.UpdateWalletBalancesParams{
		ID:            w.ID,
		Balance:       w.Balance,
		LockedBalance: w.LockedBalance.Sub(amount),
	})
}

// DebitLockedInTx consumes funds that were previously locked: balance and
// locked_balance drop together. Used when a pending withdrawal settles.
func DebitLockedInTx(ctx context.Context, q store.Querier, userID int64, currency string, amount decimal.Decimal) (store.Wallet, error) {
	if !amount.IsPositive() {
		return store.Wallet{}, ErrInvalidAmount
	}

	w, err := lockedActiveWallet(ctx, q, userID, currency)
	if err != nil {
		return store.Wallet{}, err
	}

	if w.LockedBalance.LessThan(amount) {
		return store.Wallet{}, ErrOverUnlock
	}

	return q.UpdateWalletBalances(ctx, store.UpdateWalletBalancesParams{
		ID:            w.ID,
		Balance:       w.Balance.Sub(amount),
		LockedBalance: w.LockedBalance.Sub(amount),
	})
}

func lockedActiveWallet(ctx context.Context, q store.Querier, userID int64, currency string) (store.Wallet, error) {
	w, err := q.GetWalletForUpdate(ctx, store.GetWalletParams{UserID: userID, Currency: currency})
	if errors.Is(err, store.ErrNotFound) {
		return store.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return store.Wallet{}, err
	}
	if w.Status != StatusActive {
		return store.Wallet{}, ErrWalletInactive
	}
	return w, nil
}
