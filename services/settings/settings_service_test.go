package settings

import (
	"context"
	"io"
	"testing"
	"time"

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
	return NewSettingsService(s, l, time.Minute), s
}

func TestGetIntDefaultsWhenAbsent(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.GetInt(context.Background(), KeyReferralMaxLevels, 2)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestGetIntReadsStoredValue(t *testing.T) {
	svc, memStore := newTestService(t)
	memStore.PutSetting(KeyReferralMaxLevels, "5")

	n, err := svc.GetInt(context.Background(), KeyReferralMaxLevels, 2)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestGetIntDefaultsOnMalformedValue(t *testing.T) {
	svc, memStore := newTestService(t)
	memStore.PutSetting(KeyReferralMaxLevels, "lots")

	n, err := svc.GetInt(context.Background(), KeyReferralMaxLevels, 2)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestGetDecimal(t *testing.T) {
	svc, memStore := newTestService(t)
	memStore.PutSetting(LevelPercentKey(1), "5.5")

	d, err := svc.GetDecimal(context.Background(), LevelPercentKey(1), decimal.Zero)
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("5.5")))
}

func TestInvalidateForcesReload(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	memStore.PutSetting(KeyMinWithdrawal, "10")

	d, err := svc.GetDecimal(ctx, KeyMinWithdrawal, decimal.Zero)
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromInt(10)))

	// The cached value survives a storage update until invalidated.
	memStore.PutSetting(KeyMinWithdrawal, "25")
	d, err = svc.GetDecimal(ctx, KeyMinWithdrawal, decimal.Zero)
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromInt(10)))

	svc.Invalidate(KeyMinWithdrawal)
	d, err = svc.GetDecimal(ctx, KeyMinWithdrawal, decimal.Zero)
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromInt(25)))
}
