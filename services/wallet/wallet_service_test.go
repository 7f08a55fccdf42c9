package wallet

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/db/store/storetest"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storetest.MemStore) {
	t.Helper()
	s := storetest.NewStore()
	l := logging.NewLogger(nil)
	l.SetOutput(io.Discard)
	return NewWalletService(s, l), s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreditCreatesWallet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Credit(ctx, 1, "USDT", dec("100"))
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec("100")))
	require.True(t, w.LockedBalance.IsZero())
	require.True(t, w.Available.Equal(dec("100")))
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("0"))
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Credit(ctx, 1, "USDT", dec("-5"))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

// racedQuerier makes the first wallet insert lose a create race: the row
// appears under the caller's feet and the insert itself returns no row, the
// way ON CONFLICT DO NOTHING behaves on a live database.
type racedQuerier struct {
	store.Querier
	raced bool
}

func (r *racedQuerier) CreateWallet(ctx context.Context, arg store.CreateWalletParams) (store.Wallet, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.Querier.CreateWallet(ctx, arg); err != nil {
			return store.Wallet{}, err
		}
		return store.Wallet{}, store.ErrNotFound
	}
	return r.Querier.CreateWallet(ctx, arg)
}

func TestCreditRecoversWhenCreateLosesRace(t *testing.T) {
	_, memStore := newTestService(t)
	ctx := context.Background()

	// The losing unit must re-read the row under lock and carry on, not fail
	// the whole credit.
	err := memStore.ExecTx(ctx, func(q store.Querier) error {
		_, err := CreditInTx(ctx, &racedQuerier{Querier: q}, 1, "USDT", dec("25"))
		return err
	})
	require.NoError(t, err)

	w, err := memStore.GetWallet(ctx, store.GetWalletParams{UserID: 1, Currency: "USDT"})
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec("25")))
}

func TestDebitRespectsAvailableBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("100"))
	require.NoError(t, err)
	_, err = svc.Lock(ctx, 1, "USDT", dec("70"))
	require.NoError(t, err)

	// 30 available, so 50 must bounce even though the balance is 100.
	_, err = svc.Debit(ctx, 1, "USDT", dec("50"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	w, err := svc.Debit(ctx, 1, "USDT", dec("30"))
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec("70")))
	require.True(t, w.LockedBalance.Equal(dec("70")))
	require.True(t, w.Available.IsZero())

	// Drained to zero available; any further debit overdraws.
	_, err = svc.Debit(ctx, 1, "USDT", dec("0.01"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestDebitMissingWallet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Debit(context.Background(), 42, "USDT", dec("1"))
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestConcurrentDebitsSerialize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("100"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(ctx, 1, "USDT", dec("60"))
		}(i)
	}
	wg.Wait()

	// Exactly one debit wins; the loser sees the committed balance.
	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, ErrInsufficientFunds)
			insufficient++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, insufficient)

	w, err := svc.GetWallet(ctx, 1, "USDT")
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec("40")))
}

func TestUnlockNeverExceedsLocked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("50"))
	require.NoError(t, err)
	_, err = svc.Lock(ctx, 1, "USDT", dec("20"))
	require.NoError(t, err)

	_, err = svc.Unlock(ctx, 1, "USDT", dec("25"))
	require.ErrorIs(t, err, ErrOverUnlock)

	w, err := svc.Unlock(ctx, 1, "USDT", dec("20"))
	require.NoError(t, err)
	require.True(t, w.LockedBalance.IsZero())
	require.True(t, w.Available.Equal(dec("50")))
}

func TestTransferMovesFunds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("100"))
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(ctx, 1, 2, "USDT", dec("40")))

	from, err := svc.GetWallet(ctx, 1, "USDT")
	require.NoError(t, err)
	require.True(t, from.Balance.Equal(dec("60")))

	to, err := svc.GetWallet(ctx, 2, "USDT")
	require.NoError(t, err)
	require.True(t, to.Balance.Equal(dec("40")))
}

func TestTransferFailureLeavesSenderUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("10"))
	require.NoError(t, err)

	err = svc.Transfer(ctx, 1, 2, "USDT", dec("25"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	from, err := svc.GetWallet(ctx, 1, "USDT")
	require.NoError(t, err)
	require.True(t, from.Balance.Equal(dec("10")))

	_, err = svc.GetWallet(ctx, 2, "USDT")
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestDebitLockedConsumesBothSides(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "USDT", dec("100"))
	require.NoError(t, err)
	_, err = svc.Lock(ctx, 1, "USDT", dec("30"))
	require.NoError(t, err)

	err = memStore.ExecTx(ctx, func(q store.Querier) error {
		_, err := DebitLockedInTx(ctx, q, 1, "USDT", dec("30"))
		return err
	})
	require.NoError(t, err)

	w, err := svc.GetWallet(ctx, 1, "USDT")
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec("70")))
	require.True(t, w.LockedBalance.IsZero())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, 1, "USDT")
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, 1, "USDT")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	wallets, err := svc.ListWallets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
}
