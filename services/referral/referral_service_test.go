package referral

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/db/store/storetest"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/settings"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storetest.MemStore) {
	t.Helper()
	s := storetest.NewStore()
	l := logging.NewLogger(nil)
	l.SetOutput(io.Discard)
	users := user.NewUserService(s)
	cfg := settings.NewSettingsService(s, l, time.Minute)
	return NewReferralService(s, users, cfg, "USDT", l), s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedChain builds A(1) <- B(2) <- C(3): C was referred by B, B by A.
func seedChain(s *storetest.MemStore) {
	s.SeedUser(store.User{ID: 1, Email: "a@example.com"})
	s.SeedUser(store.User{ID: 2, Email: "b@example.com", ReferredBy: sql.NullInt64{Int64: 1, Valid: true}})
	s.SeedUser(store.User{ID: 3, Email: "c@example.com", ReferredBy: sql.NullInt64{Int64: 2, Valid: true}})
}

func walletBalance(t *testing.T, s *storetest.MemStore, userID int64) decimal.Decimal {
	t.Helper()
	w, err := s.GetWallet(context.Background(), store.GetWalletParams{UserID: userID, Currency: "USDT"})
	if err != nil {
		require.ErrorIs(t, err, store.ErrNotFound)
		return decimal.Zero
	}
	return w.Balance
}

func TestDistributeWalksTheUpline(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "3")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")
	memStore.PutSetting(settings.LevelPercentKey(2), "2")

	results, err := svc.Distribute(ctx, 3, dec("100"), KindDeposit, uuid.New())
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, 1, results[0].Level)
	require.Equal(t, int64(2), results[0].UserID)
	require.True(t, results[0].Amount.Equal(dec("5")))
	require.Equal(t, transaction.StatusCompleted, results[0].Status)
	require.NotZero(t, results[0].CommissionID)

	require.Equal(t, 2, results[1].Level)
	require.Equal(t, int64(1), results[1].UserID)
	require.True(t, results[1].Amount.Equal(dec("2")))

	require.True(t, walletBalance(t, memStore, 2).Equal(dec("5")))
	require.True(t, walletBalance(t, memStore, 1).Equal(dec("2")))
	// The triggering user earns nothing from their own event.
	require.True(t, walletBalance(t, memStore, 3).IsZero())
}

func TestDistributeStopsWhenChainEnds(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "5")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")
	memStore.PutSetting(settings.LevelPercentKey(2), "2")
	memStore.PutSetting(settings.LevelPercentKey(3), "1")

	// B's upline is only A; the walk ends silently after level 2.
	results, err := svc.Distribute(ctx, 3, dec("100"), KindPurchase, uuid.New())
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestDistributeSameSourcePaysOnce(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "1")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")

	source := uuid.New()
	_, err := svc.Distribute(ctx, 3, dec("100"), KindDeposit, source)
	require.NoError(t, err)

	results, err := svc.Distribute(ctx, 3, dec("100"), KindDeposit, source)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Skipped)

	// Replaying the event never double-pays.
	require.True(t, walletBalance(t, memStore, 2).Equal(dec("5")))

	commissions, err := svc.ListCommissions(ctx, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, commissions, 1)
}

func TestDistributeConcurrentReplaysPayOnce(t *testing.T) {
	svc, memStore := newTestService(t)
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "1")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")

	// The same source event lands twice at once; the unique key decides the
	// winner, not scheduling.
	source := uuid.New()
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Distribute(context.Background(), 3, dec("100"), KindDeposit, source)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.True(t, walletBalance(t, memStore, 2).Equal(dec("5")))

	rows, err := memStore.ListCommissionsBySource(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, transaction.StatusCompleted, rows[0].Status)
}

// outageStore drops the connection for per-level rate reads only, so the
// walk itself still starts.
type outageStore struct {
	*storetest.MemStore
}

func (o *outageStore) GetSetting(ctx context.Context, key string) (store.Setting, error) {
	if strings.HasPrefix(key, "referral_level_") {
		return store.Setting{}, errors.New("dial tcp 10.0.0.5:5432: connection refused")
	}
	return o.MemStore.GetSetting(ctx, key)
}

func TestDistributeRecordsFailureOnSettingsOutage(t *testing.T) {
	memStore := storetest.NewStore()
	l := logging.NewLogger(nil)
	l.SetOutput(io.Discard)
	users := user.NewUserService(memStore)
	cfg := settings.NewSettingsService(&outageStore{MemStore: memStore}, l, time.Minute)
	svc := NewReferralService(memStore, users, cfg, "USDT", l)

	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "2")

	results, err := svc.Distribute(context.Background(), 3, dec("100"), KindDeposit, uuid.New())
	require.ErrorIs(t, err, settings.ErrUnavailable)
	require.Len(t, results, 1)
	require.Equal(t, transaction.StatusFailed, results[0].Status)

	// The outage still leaves an audit row; the amount is unknowable without
	// the rate, so it stays zero. No wallet moved.
	rows, err := memStore.ListCommissionsByUser(context.Background(), store.ListCommissionsByUserParams{UserID: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, transaction.StatusFailed, rows[0].Status)
	require.True(t, rows[0].Amount.IsZero())
	require.True(t, walletBalance(t, memStore, 2).IsZero())
}

func TestDistributeSkipsZeroRateLevels(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "2")
	memStore.PutSetting(settings.LevelPercentKey(2), "2")

	// Level 1 has no configured rate; only A earns.
	results, err := svc.Distribute(ctx, 3, dec("100"), KindMining, uuid.New())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 2, results[0].Level)
	require.True(t, walletBalance(t, memStore, 2).IsZero())
	require.True(t, walletBalance(t, memStore, 1).Equal(dec("2")))
}

func TestDistributeSkipsSuspendedBeneficiaries(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	memStore.SeedUser(store.User{ID: 1, Email: "a@example.com", Status: user.StatusSuspended})
	memStore.SeedUser(store.User{ID: 2, Email: "b@example.com", ReferredBy: sql.NullInt64{Int64: 1, Valid: true}})
	memStore.PutSetting(settings.KeyReferralMaxLevels, "1")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")

	results, err := svc.Distribute(ctx, 2, dec("100"), KindDeposit, uuid.New())
	require.NoError(t, err)
	require.Empty(t, results)
	require.True(t, walletBalance(t, memStore, 1).IsZero())
}

func TestDistributeNoReferrer(t *testing.T) {
	svc, memStore := newTestService(t)
	memStore.SeedUser(store.User{ID: 1, Email: "a@example.com"})
	memStore.PutSetting(settings.KeyReferralMaxLevels, "2")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")

	results, err := svc.Distribute(context.Background(), 1, dec("100"), KindDeposit, uuid.New())
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestDistributeWritesJournalEntries(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	seedChain(memStore)
	memStore.PutSetting(settings.KeyReferralMaxLevels, "1")
	memStore.PutSetting(settings.LevelPercentKey(1), "5")

	_, err := svc.Distribute(ctx, 3, dec("100"), KindDeposit, uuid.New())
	require.NoError(t, err)

	rows, err := memStore.ListTransactionsByUser(ctx, store.ListTransactionsByUserParams{UserID: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, transaction.TypeReferralCommission, rows[0].Type)
	require.Equal(t, transaction.StatusCompleted, rows[0].Status)
	require.True(t, rows[0].Amount.Equal(dec("5")))
}
