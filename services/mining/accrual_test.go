package mining

import (
	"context"
	"testing"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/stretchr/testify/require"
)

func TestDailyReward(t *testing.T) {
	// 10000 TH/s at 0.007%/day pays 0.7.
	require.True(t, DailyReward(dec("10000"), dec("0.007")).Equal(dec("0.7")))
	require.True(t, DailyReward(dec("0"), dec("0.007")).IsZero())
}

func TestRunAccrualPaysEachUserOnce(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// User 1 holds two rigs, user 2 one.
	seedHolding(t, memStore, 1, dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))
	seedHolding(t, memStore, 1, dec("5000"), HoldingStatusActive, now.Add(24*time.Hour))
	seedHolding(t, memStore, 2, dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))
	seedHolding(t, memStore, 3, dec("10000"), HoldingStatusExpired, now.Add(24*time.Hour))

	stats, err := svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Processed)
	require.Equal(t, 0, stats.Skipped)
	require.Equal(t, 0, stats.Failed)
	require.True(t, stats.TotalAmount.Equal(dec("1.75")), "got %s", stats.TotalAmount)

	// One aggregated reward per user, not one per holding.
	require.True(t, balance(t, memStore, 1).Equal(dec("1.05")))
	require.True(t, balance(t, memStore, 2).Equal(dec("0.7")))

	rows, err := memStore.ListTransactionsByUser(ctx, store.ListTransactionsByUserParams{UserID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, transaction.TypeMiningReward, rows[0].Type)
	require.Equal(t, transaction.StatusCompleted, rows[0].Status)
	require.True(t, rows[0].RewardDate.Valid)
}

func TestRunAccrualSecondRunSkips(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedHolding(t, memStore, 1, dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))

	stats, err := svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)

	stats, err = svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Processed)
	require.Equal(t, 1, stats.Skipped)
	require.True(t, stats.TotalAmount.IsZero())

	// The balance reflects exactly one day of rewards.
	require.True(t, balance(t, memStore, 1).Equal(dec("0.7")))
}

func TestRunAccrualPaysEachCurrencySeparately(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedHoldingIn(t, memStore, 1, "USDT", dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))
	seedHoldingIn(t, memStore, 1, "TRX", dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))

	stats, err := svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Processed)
	require.Equal(t, 0, stats.Failed)

	// Each currency's reward lands in its own wallet, one journal row per
	// wallet.
	require.True(t, balanceIn(t, memStore, 1, "USDT").Equal(dec("0.7")))
	require.True(t, balanceIn(t, memStore, 1, "TRX").Equal(dec("0.7")))

	rows, err := memStore.ListTransactionsByUser(ctx, store.ListTransactionsByUserParams{UserID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// A re-run skips both wallets independently.
	stats, err = svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Processed)
	require.Equal(t, 2, stats.Skipped)
}

func TestRunAccrualCountsZeroPowerAsSkipped(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedHolding(t, memStore, 1, dec("0"), HoldingStatusActive, now.Add(24*time.Hour))
	seedHolding(t, memStore, 2, dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))

	stats, err := svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)
	require.Equal(t, 1, stats.Skipped)
	require.True(t, balance(t, memStore, 2).Equal(dec("0.7")))
}

func TestRunAccrualDistinctDatesPayAgain(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedHolding(t, memStore, 1, dec("10000"), HoldingStatusActive, now.Add(48*time.Hour))

	_, err := svc.RunAccrual(ctx, now)
	require.NoError(t, err)
	stats, err := svc.RunAccrual(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)

	require.True(t, balance(t, memStore, 1).Equal(dec("1.4")))
}

func TestRunAccrualHonorsCancellation(t *testing.T) {
	svc, memStore := newTestService(t)
	now := time.Now().UTC()

	seedHolding(t, memStore, 1, dec("10000"), HoldingStatusActive, now.Add(24*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunAccrual(ctx, now)
	require.ErrorIs(t, err, context.Canceled)
}
