package transaction

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/db/store/storetest"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/notification"
	"github.com/MineVault/MineVault-Backend/services/settings"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storetest.MemStore) {
	t.Helper()
	s := storetest.NewStore()
	l := logging.NewLogger(nil)
	l.SetOutput(io.Discard)
	cfg := settings.NewSettingsService(s, l, time.Minute)
	notifier := notification.NewNotificationService(s, nil, l)
	return NewTransactionService(s, cfg, notifier, l), s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func credit(t *testing.T, s *storetest.MemStore, userID int64, amount string) {
	t.Helper()
	err := s.ExecTx(context.Background(), func(q store.Querier) error {
		_, err := wallet.CreditInTx(context.Background(), q, userID, "USDT", dec(amount))
		return err
	})
	require.NoError(t, err)
}

func walletOf(t *testing.T, s *storetest.MemStore, userID int64) store.Wallet {
	t.Helper()
	w, err := s.GetWallet(context.Background(), store.GetWalletParams{UserID: userID, Currency: "USDT"})
	require.NoError(t, err)
	return w
}

// collidingQuerier fails the first CreateTransaction calls the way a taken
// reference does, then lets the insert through.
type collidingQuerier struct {
	store.Querier
	collisions int
	calls      int
}

func (c *collidingQuerier) CreateTransaction(ctx context.Context, arg store.CreateTransactionParams) (store.Transaction, error) {
	c.calls++
	if c.calls <= c.collisions {
		return store.Transaction{}, store.ErrDuplicateReference
	}
	return c.Querier.CreateTransaction(ctx, arg)
}

func TestCreateInTxRetriesReferenceCollision(t *testing.T) {
	_, memStore := newTestService(t)
	ctx := context.Background()

	cq := &collidingQuerier{collisions: 2}
	var created store.Transaction
	err := memStore.ExecTx(ctx, func(q store.Querier) error {
		cq.Querier = q
		var err error
		created, err = CreateInTx(ctx, cq, CreateParams{
			UserID:   1,
			Type:     TypeDeposit,
			Amount:   dec("10"),
			Currency: "USDT",
		})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 3, cq.calls)
	require.Equal(t, StatusPending, created.Status)
}

func TestCreateInTxDuplicateEventFailsTheUnit(t *testing.T) {
	_, memStore := newTestService(t)
	ctx := context.Background()
	day := time.Now().UTC().Truncate(24 * time.Hour)

	insert := func() error {
		return memStore.ExecTx(ctx, func(q store.Querier) error {
			_, err := CreateInTx(ctx, q, CreateParams{
				UserID:     1,
				Type:       TypeMiningReward,
				Amount:     dec("0.7"),
				Currency:   "USDT",
				RewardDate: &day,
			})
			return err
		})
	}

	require.NoError(t, insert())
	// Same (user, currency, day): an idempotency violation, never a retry.
	require.ErrorIs(t, insert(), ErrDuplicateEvent)
}

func TestNewReferenceFormat(t *testing.T) {
	tests := []struct {
		txType string
		prefix string
	}{
		{TypeDeposit, "DEP"},
		{TypeWithdrawal, "WDL"},
		{TypePurchase, "PUR"},
		{TypeMiningReward, "MNR"},
		{TypeReferralCommission, "REF"},
	}
	pattern := regexp.MustCompile(`^[A-Z]{3}\d+[0-9a-f]{6}$`)
	for _, tc := range tests {
		ref := NewReference(tc.txType)
		require.True(t, pattern.MatchString(ref), "reference %q", ref)
		require.Equal(t, tc.prefix, ref[:3])
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusCancelled, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCreateAndLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateParams{UserID: 1, Type: TypeDeposit, Amount: dec("10"), Currency: "USDT"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, m.Status)
	require.Nil(t, m.ProcessedAt)

	m, err = svc.UpdateStatus(ctx, m.ID, StatusProcessing)
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, m.Status)

	m, err = svc.Complete(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, m.Status)
	require.NotNil(t, m.ProcessedAt)

	// Terminal rows never move again.
	_, err = svc.Fail(ctx, m.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDepositCreditsWalletAtomically(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()

	m, err := svc.Deposit(ctx, 1, "USDT", dec("100"), "0xabc")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, m.Status)
	require.Equal(t, "0xabc", m.TxHash)

	w := walletOf(t, memStore, 1)
	require.True(t, w.Balance.Equal(dec("100")))

	history, err := svc.History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Deposit(context.Background(), 1, "USDT", dec("0"), "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRequestWithdrawalLocksAmountPlusFee(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	memStore.PutSetting(settings.KeyMinWithdrawal, "10")
	memStore.PutSetting(settings.KeyWithdrawalFee, "2")
	credit(t, memStore, 1, "100")

	m, err := svc.RequestWithdrawal(ctx, 1, "USDT", dec("50"))
	require.NoError(t, err)
	require.Equal(t, StatusPending, m.Status)
	require.True(t, m.Fee.Equal(dec("1")))

	w := walletOf(t, memStore, 1)
	require.True(t, w.Balance.Equal(dec("100")), "requesting must not move the balance")
	require.True(t, w.LockedBalance.Equal(dec("51")))
}

func TestRequestWithdrawalBelowMinimum(t *testing.T) {
	svc, memStore := newTestService(t)
	memStore.PutSetting(settings.KeyMinWithdrawal, "25")
	credit(t, memStore, 1, "100")

	_, err := svc.RequestWithdrawal(context.Background(), 1, "USDT", dec("10"))
	require.ErrorIs(t, err, ErrBelowMinimum)
}

func TestRequestWithdrawalRollsBackOnInsufficientFunds(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	credit(t, memStore, 1, "30")

	_, err := svc.RequestWithdrawal(ctx, 1, "USDT", dec("40"))
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	// The journal row created in the failed unit must be gone too.
	history, err := svc.History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestCompleteWithdrawalSettlesLockedFunds(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	memStore.PutSetting(settings.KeyWithdrawalFee, "2")
	credit(t, memStore, 1, "100")

	m, err := svc.RequestWithdrawal(ctx, 1, "USDT", dec("50"))
	require.NoError(t, err)

	m, err = svc.CompleteWithdrawal(ctx, m.ID, "0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, m.Status)
	require.Equal(t, "0xdeadbeef", m.TxHash)

	w := walletOf(t, memStore, 1)
	require.True(t, w.Balance.Equal(dec("49")))
	require.True(t, w.LockedBalance.IsZero())
}

func TestCancelWithdrawalReleasesLock(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	credit(t, memStore, 1, "100")

	m, err := svc.RequestWithdrawal(ctx, 1, "USDT", dec("50"))
	require.NoError(t, err)

	// Only the owner may cancel.
	_, err = svc.CancelWithdrawal(ctx, 2, m.ID)
	require.ErrorIs(t, err, ErrNotYours)

	m, err = svc.CancelWithdrawal(ctx, 1, m.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, m.Status)

	w := walletOf(t, memStore, 1)
	require.True(t, w.Balance.Equal(dec("100")))
	require.True(t, w.LockedBalance.IsZero())

	// Cancelled is terminal; settling it afterwards must fail.
	_, err = svc.CompleteWithdrawal(ctx, m.ID, "0x1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteWithdrawalRejectsOtherTypes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Deposit(ctx, 1, "USDT", dec("10"), "")
	require.NoError(t, err)

	_, err = svc.CompleteWithdrawal(ctx, m.ID, "0x1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}
