package notification

import (
	"context"
	"io"
	"testing"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/db/store/storetest"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storetest.MemStore) {
	t.Helper()
	s := storetest.NewStore()
	l := logging.NewLogger(nil)
	l.SetOutput(io.Discard)
	return NewNotificationService(s, nil, l), s
}

func TestNotifyUserPersistsRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.NotifyUser(ctx, 1, "deposit", "Deposit received", "Your deposit has been credited.",
		map[string]interface{}{"reference": "DEP1abc"})

	rows, err := svc.List(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "deposit", rows[0].Kind)
	require.Equal(t, "Deposit received", rows[0].Title)
	require.Contains(t, string(rows[0].Data), "DEP1abc")
}

func TestNotifyAllAdminsFansOut(t *testing.T) {
	svc, memStore := newTestService(t)
	ctx := context.Background()
	memStore.SeedUser(store.User{ID: 1, Email: "ops@example.com", Role: "admin"})
	memStore.SeedUser(store.User{ID: 2, Email: "ops2@example.com", Role: "admin"})
	memStore.SeedUser(store.User{ID: 3, Email: "user@example.com"})

	svc.NotifyAllAdmins(ctx, "withdrawal_request", "Withdrawal requested", "User 3 requested a withdrawal.", nil)

	for _, adminID := range []int64{1, 2} {
		rows, err := svc.List(ctx, adminID, 10, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
	}

	rows, err := svc.List(ctx, 3, 10, 0)
	require.NoError(t, err)
	require.Empty(t, rows)
}
