package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errCheckViolation = errors.New("check constraint violated: wallets_locked_within_balance")

// Single-statement access outside ExecTx, serialized under the same mutex.

func (s *MemStore) GetWallet(ctx context.Context, arg store.GetWalletParams) (w store.Wallet, err error) {
	err = s.withLock(func(q *querier) error { w, err = q.GetWallet(ctx, arg); return err })
	return
}

func (s *MemStore) GetWalletForUpdate(ctx context.Context, arg store.GetWalletParams) (w store.Wallet, err error) {
	err = s.withLock(func(q *querier) error { w, err = q.GetWalletForUpdate(ctx, arg); return err })
	return
}

func (s *MemStore) CreateWallet(ctx context.Context, arg store.CreateWalletParams) (w store.Wallet, err error) {
	err = s.withLock(func(q *querier) error { w, err = q.CreateWallet(ctx, arg); return err })
	return
}

func (s *MemStore) UpdateWalletBalances(ctx context.Context, arg store.UpdateWalletBalancesParams) (w store.Wallet, err error) {
	err = s.withLock(func(q *querier) error { w, err = q.UpdateWalletBalances(ctx, arg); return err })
	return
}

func (s *MemStore) ListWalletsByUser(ctx context.Context, userID int64) (ws []store.Wallet, err error) {
	err = s.withLock(func(q *querier) error { ws, err = q.ListWalletsByUser(ctx, userID); return err })
	return
}

func (s *MemStore) CreateTransaction(ctx context.Context, arg store.CreateTransactionParams) (t store.Transaction, err error) {
	err = s.withLock(func(q *querier) error { t, err = q.CreateTransaction(ctx, arg); return err })
	return
}

func (s *MemStore) GetTransaction(ctx context.Context, id uuid.UUID) (t store.Transaction, err error) {
	err = s.withLock(func(q *querier) error { t, err = q.GetTransaction(ctx, id); return err })
	return
}

func (s *MemStore) GetTransactionByReference(ctx context.Context, ref string) (t store.Transaction, err error) {
	err = s.withLock(func(q *querier) error { t, err = q.GetTransactionByReference(ctx, ref); return err })
	return
}

func (s *MemStore) UpdateTransactionStatus(ctx context.Context, arg store.UpdateTransactionStatusParams) (t store.Transaction, err error) {
	err = s.withLock(func(q *querier) error { t, err = q.UpdateTransactionStatus(ctx, arg); return err })
	return
}

func (s *MemStore) ListTransactionsByUser(ctx context.Context, arg store.ListTransactionsByUserParams) (ts []store.Transaction, err error) {
	err = s.withLock(func(q *querier) error { ts, err = q.ListTransactionsByUser(ctx, arg); return err })
	return
}

func (s *MemStore) CreateMiningHolding(ctx context.Context, arg store.CreateMiningHoldingParams) (h store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { h, err = q.CreateMiningHolding(ctx, arg); return err })
	return
}

func (s *MemStore) GetMiningHolding(ctx context.Context, id int64) (h store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { h, err = q.GetMiningHolding(ctx, id); return err })
	return
}

func (s *MemStore) GetMiningHoldingForUpdate(ctx context.Context, id int64) (h store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { h, err = q.GetMiningHoldingForUpdate(ctx, id); return err })
	return
}

func (s *MemStore) ListHoldingsByUser(ctx context.Context, userID int64) (hs []store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { hs, err = q.ListHoldingsByUser(ctx, userID); return err })
	return
}

func (s *MemStore) ListActiveHoldings(ctx context.Context, asOf time.Time) (hs []store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { hs, err = q.ListActiveHoldings(ctx, asOf); return err })
	return
}

func (s *MemStore) SumActiveMiningPower(ctx context.Context, arg store.SumActiveMiningPowerParams) (d decimal.Decimal, err error) {
	err = s.withLock(func(q *querier) error { d, err = q.SumActiveMiningPower(ctx, arg); return err })
	return
}

func (s *MemStore) ExpireHoldings(ctx context.Context, asOf time.Time) (hs []store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { hs, err = q.ExpireHoldings(ctx, asOf); return err })
	return
}

func (s *MemStore) UpdateHoldingStatus(ctx context.Context, arg store.UpdateHoldingStatusParams) (h store.MiningHolding, err error) {
	err = s.withLock(func(q *querier) error { h, err = q.UpdateHoldingStatus(ctx, arg); return err })
	return
}

func (s *MemStore) CreateReferralCommission(ctx context.Context, arg store.CreateReferralCommissionParams) (c store.ReferralCommission, err error) {
	err = s.withLock(func(q *querier) error { c, err = q.CreateReferralCommission(ctx, arg); return err })
	return
}

func (s *MemStore) UpdateReferralCommissionStatus(ctx context.Context, arg store.UpdateReferralCommissionStatusParams) (c store.ReferralCommission, err error) {
	err = s.withLock(func(q *querier) error { c, err = q.UpdateReferralCommissionStatus(ctx, arg); return err })
	return
}

func (s *MemStore) ListCommissionsByUser(ctx context.Context, arg store.ListCommissionsByUserParams) (cs []store.ReferralCommission, err error) {
	err = s.withLock(func(q *querier) error { cs, err = q.ListCommissionsByUser(ctx, arg); return err })
	return
}

func (s *MemStore) ListCommissionsBySource(ctx context.Context, id uuid.UUID) (cs []store.ReferralCommission, err error) {
	err = s.withLock(func(q *querier) error { cs, err = q.ListCommissionsBySource(ctx, id); return err })
	return
}

func (s *MemStore) GetUser(ctx context.Context, id int64) (u store.User, err error) {
	err = s.withLock(func(q *querier) error { u, err = q.GetUser(ctx, id); return err })
	return
}

func (s *MemStore) ListAdmins(ctx context.Context) (us []store.User, err error) {
	err = s.withLock(func(q *querier) error { us, err = q.ListAdmins(ctx); return err })
	return
}

func (s *MemStore) GetMiningPackage(ctx context.Context, id int64) (p store.MiningPackage, err error) {
	err = s.withLock(func(q *querier) error { p, err = q.GetMiningPackage(ctx, id); return err })
	return
}

func (s *MemStore) ListActiveMiningPackages(ctx context.Context) (ps []store.MiningPackage, err error) {
	err = s.withLock(func(q *querier) error { ps, err = q.ListActiveMiningPackages(ctx); return err })
	return
}

func (s *MemStore) GetSetting(ctx context.Context, key string) (v store.Setting, err error) {
	err = s.withLock(func(q *querier) error { v, err = q.GetSetting(ctx, key); return err })
	return
}

func (s *MemStore) CreateNotification(ctx context.Context, arg store.CreateNotificationParams) (n store.Notification, err error) {
	err = s.withLock(func(q *querier) error { n, err = q.CreateNotification(ctx, arg); return err })
	return
}

func (s *MemStore) ListNotificationsByUser(ctx context.Context, arg store.ListNotificationsByUserParams) (ns []store.Notification, err error) {
	err = s.withLock(func(q *querier) error { ns, err = q.ListNotificationsByUser(ctx, arg); return err })
	return
}
