// Package storetest provides an in-memory store.Store used by service tests.
// Atomic units are serialized under one mutex; rollback restores a snapshot of
// the tables, and the unique indexes the schema declares are emulated so
// idempotency guards behave the same way they do against postgres.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type tables struct {
	users          map[int64]store.User
	wallets        map[uuid.UUID]store.Wallet
	transactions   map[uuid.UUID]store.Transaction
	holdings       map[int64]store.MiningHolding
	commissions    map[int64]store.ReferralCommission
	packages       map[int64]store.MiningPackage
	settings       map[string]store.Setting
	notifications  []store.Notification
	nextHoldingID  int64
	nextCommID     int64
	nextNotifID    int64
	txOrder        []uuid.UUID
	commOrder      []int64
	holdingOrder   []int64
}

func (t *tables) clone() *tables {
	c := &tables{
		users:         make(map[int64]store.User, len(t.users)),
		wallets:       make(map[uuid.UUID]store.Wallet, len(t.wallets)),
		transactions:  make(map[uuid.UUID]store.Transaction, len(t.transactions)),
		holdings:      make(map[int64]store.MiningHolding, len(t.holdings)),
		commissions:   make(map[int64]store.ReferralCommission, len(t.commissions)),
		packages:      make(map[int64]store.MiningPackage, len(t.packages)),
		settings:      make(map[string]store.Setting, len(t.settings)),
		notifications: append([]store.Notification(nil), t.notifications...),
		nextHoldingID: t.nextHoldingID,
		nextCommID:    t.nextCommID,
		nextNotifID:   t.nextNotifID,
		txOrder:       append([]uuid.UUID(nil), t.txOrder...),
		commOrder:     append([]int64(nil), t.commOrder...),
		holdingOrder:  append([]int64(nil), t.holdingOrder...),
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.wallets {
		c.wallets[k] = v
	}
	for k, v := range t.transactions {
		c.transactions[k] = v
	}
	for k, v := range t.holdings {
		c.holdings[k] = v
	}
	for k, v := range t.commissions {
		c.commissions[k] = v
	}
	for k, v := range t.packages {
		c.packages[k] = v
	}
	for k, v := range t.settings {
		c.settings[k] = v
	}
	return c
}

type MemStore struct {
	mu sync.Mutex
	t  *tables
}

var _ store.Store = (*MemStore)(nil)

func NewStore() *MemStore {
	return &MemStore{t: &tables{
		users:        make(map[int64]store.User),
		wallets:      make(map[uuid.UUID]store.Wallet),
		transactions: make(map[uuid.UUID]store.Transaction),
		holdings:     make(map[int64]store.MiningHolding),
		commissions:  make(map[int64]store.ReferralCommission),
		packages:     make(map[int64]store.MiningPackage),
		settings:     make(map[string]store.Setting),
	}}
}

// ExecTx serializes units and restores the pre-unit snapshot when fn fails.
func (s *MemStore) ExecTx(ctx context.Context, fn func(q store.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.t.clone()
	if err := fn(&querier{t: s.t}); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

// Seed helpers.

func (s *MemStore) SeedUser(u store.User) store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Status == "" {
		u.Status = "active"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.t.users[u.ID] = u
	return u
}

func (s *MemStore) SeedPackage(p store.MiningPackage) store.MiningPackage {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.t.packages[p.ID] = p
	return p
}

func (s *MemStore) PutSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.settings[key] = store.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
}

// Querier methods on the store itself run as single-statement units.

type querier struct {
	t *tables
}

var _ store.Querier = (*querier)(nil)

func (s *MemStore) withLock(fn func(q *querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&querier{t: s.t})
}

func (q *querier) findWallet(userID int64, currency string) (store.Wallet, bool) {
	for _, w := range q.t.wallets {
		if w.UserID == userID && w.Currency == currency {
			return w, true
		}
	}
	return store.Wallet{}, false
}

func (q *querier) GetWallet(_ context.Context, arg store.GetWalletParams) (store.Wallet, error) {
	w, ok := q.findWallet(arg.UserID, arg.Currency)
	if !ok {
		return store.Wallet{}, store.ErrNotFound
	}
	return w, nil
}

func (q *querier) GetWalletForUpdate(ctx context.Context, arg store.GetWalletParams) (store.Wallet, error) {
	return q.GetWallet(ctx, arg)
}

func (q *querier) CreateWallet(_ context.Context, arg store.CreateWalletParams) (store.Wallet, error) {
	// ON CONFLICT DO NOTHING: an existing row means no insert and no row
	// returned, never a unique violation.
	if _, ok := q.findWallet(arg.UserID, arg.Currency); ok {
		return store.Wallet{}, store.ErrNotFound
	}
	now := time.Now()
	w := store.Wallet{
		ID:            uuid.New(),
		UserID:        arg.UserID,
		Currency:      arg.Currency,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	q.t.wallets[w.ID] = w
	return w, nil
}

func (q *querier) UpdateWalletBalances(_ context.Context, arg store.UpdateWalletBalancesParams) (store.Wallet, error) {
	w, ok := q.t.wallets[arg.ID]
	if !ok {
		return store.Wallet{}, store.ErrNotFound
	}
	if arg.LockedBalance.IsNegative() || arg.LockedBalance.GreaterThan(arg.Balance) {
		return store.Wallet{}, errCheckViolation
	}
	w.Balance = arg.Balance
	w.LockedBalance = arg.LockedBalance
	w.UpdatedAt = time.Now()
	q.t.wallets[arg.ID] = w
	return w, nil
}

func (q *querier) ListWalletsByUser(_ context.Context, userID int64) ([]store.Wallet, error) {
	var out []store.Wallet
	for _, w := range q.t.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (q *querier) CreateTransaction(_ context.Context, arg store.CreateTransactionParams) (store.Transaction, error) {
	for _, t := range q.t.transactions {
		if t.ReferenceID == arg.ReferenceID {
			return store.Transaction{}, store.ErrDuplicateReference
		}
		if arg.Type == "mining_reward" && t.Type == "mining_reward" &&
			t.UserID == arg.UserID && t.Currency == arg.Currency &&
			t.RewardDate.Valid && arg.RewardDate.Valid &&
			sameDay(t.RewardDate.Time, arg.RewardDate.Time) {
			return store.Transaction{}, store.ErrDuplicate
		}
	}
	now := time.Now()
	t := store.Transaction{
		ID:          arg.ID,
		UserID:      arg.UserID,
		Type:        arg.Type,
		Amount:      arg.Amount,
		Fee:         arg.Fee,
		Currency:    arg.Currency,
		Status:      arg.Status,
		ReferenceID: arg.ReferenceID,
		TxHash:      arg.TxHash,
		RewardDate:  arg.RewardDate,
		Description: arg.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q.t.transactions[t.ID] = t
	q.t.txOrder = append(q.t.txOrder, t.ID)
	return t, nil
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Truncate(24*time.Hour).Equal(b.UTC().Truncate(24 * time.Hour))
}

func (q *querier) GetTransaction(_ context.Context, id uuid.UUID) (store.Transaction, error) {
	t, ok := q.t.transactions[id]
	if !ok {
		return store.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (q *querier) GetTransactionByReference(_ context.Context, referenceID string) (store.Transaction, error) {
	for _, t := range q.t.transactions {
		if t.ReferenceID == referenceID {
			return t, nil
		}
	}
	return store.Transaction{}, store.ErrNotFound
}

func (q *querier) UpdateTransactionStatus(_ context.Context, arg store.UpdateTransactionStatusParams) (store.Transaction, error) {
	t, ok := q.t.transactions[arg.ID]
	if !ok {
		return store.Transaction{}, store.ErrNotFound
	}
	t.Status = arg.Status
	if arg.TxHash.Valid {
		t.TxHash = arg.TxHash
	}
	if arg.ProcessedAt.Valid {
		t.ProcessedAt = arg.ProcessedAt
	}
	t.UpdatedAt = time.Now()
	q.t.transactions[arg.ID] = t
	return t, nil
}

func (q *querier) ListTransactionsByUser(_ context.Context, arg store.ListTransactionsByUserParams) ([]store.Transaction, error) {
	var out []store.Transaction
	for i := len(q.t.txOrder) - 1; i >= 0; i-- {
		t := q.t.transactions[q.t.txOrder[i]]
		if t.UserID == arg.UserID {
			out = append(out, t)
		}
	}
	return paginate(out, arg.Limit, arg.Offset), nil
}

func paginate[T any](in []T, limit, offset int32) []T {
	if offset >= int32(len(in)) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < int32(len(in)) {
		in = in[:limit]
	}
	return in
}

func (q *querier) CreateMiningHolding(_ context.Context, arg store.CreateMiningHoldingParams) (store.MiningHolding, error) {
	q.t.nextHoldingID++
	now := time.Now()
	h := store.MiningHolding{
		ID:              q.t.nextHoldingID,
		UserID:          arg.UserID,
		PackageID:       arg.PackageID,
		Amount:          arg.Amount,
		Currency:        arg.Currency,
		MiningPower:     arg.MiningPower,
		DailyRewardRate: arg.DailyRewardRate,
		StartDate:       arg.StartDate,
		EndDate:         arg.EndDate,
		Status:          arg.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	q.t.holdings[h.ID] = h
	q.t.holdingOrder = append(q.t.holdingOrder, h.ID)
	return h, nil
}

func (q *querier) GetMiningHolding(_ context.Context, id int64) (store.MiningHolding, error) {
	h, ok := q.t.holdings[id]
	if !ok {
		return store.MiningHolding{}, store.ErrNotFound
	}
	return h, nil
}

func (q *querier) GetMiningHoldingForUpdate(ctx context.Context, id int64) (store.MiningHolding, error) {
	return q.GetMiningHolding(ctx, id)
}

func (q *querier) ListHoldingsByUser(_ context.Context, userID int64) ([]store.MiningHolding, error) {
	var out []store.MiningHolding
	for _, id := range q.t.holdingOrder {
		if h := q.t.holdings[id]; h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func holdingActive(h store.MiningHolding, asOf time.Time) bool {
	return h.Status == "active" && (!h.EndDate.Valid || !h.EndDate.Time.Before(asOf))
}

func (q *querier) ListActiveHoldings(_ context.Context, asOf time.Time) ([]store.MiningHolding, error) {
	var out []store.MiningHolding
	for _, id := range q.t.holdingOrder {
		if h := q.t.holdings[id]; holdingActive(h, asOf) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (q *querier) SumActiveMiningPower(_ context.Context, arg store.SumActiveMiningPowerParams) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, h := range q.t.holdings {
		if h.UserID == arg.UserID && holdingActive(h, arg.AsOf) {
			sum = sum.Add(h.MiningPower)
		}
	}
	return sum, nil
}

func (q *querier) ExpireHoldings(_ context.Context, asOf time.Time) ([]store.MiningHolding, error) {
	var out []store.MiningHolding
	for _, id := range q.t.holdingOrder {
		h := q.t.holdings[id]
		if h.Status == "active" && h.EndDate.Valid && h.EndDate.Time.Before(asOf) {
			h.Status = "expired"
			h.UpdatedAt = time.Now()
			q.t.holdings[id] = h
			out = append(out, h)
		}
	}
	return out, nil
}

func (q *querier) UpdateHoldingStatus(_ context.Context, arg store.UpdateHoldingStatusParams) (store.MiningHolding, error) {
	h, ok := q.t.holdings[arg.ID]
	if !ok {
		return store.MiningHolding{}, store.ErrNotFound
	}
	h.Status = arg.Status
	h.UpdatedAt = time.Now()
	q.t.holdings[arg.ID] = h
	return h, nil
}

func (q *querier) CreateReferralCommission(_ context.Context, arg store.CreateReferralCommissionParams) (store.ReferralCommission, error) {
	for _, c := range q.t.commissions {
		if c.SourceTransactionID == arg.SourceTransactionID && c.UserID == arg.UserID && c.Level == arg.Level {
			return store.ReferralCommission{}, store.ErrDuplicate
		}
	}
	q.t.nextCommID++
	now := time.Now()
	c := store.ReferralCommission{
		ID:                  q.t.nextCommID,
		UserID:              arg.UserID,
		ReferralID:          arg.ReferralID,
		Amount:              arg.Amount,
		Currency:            arg.Currency,
		Type:                arg.Type,
		Level:               arg.Level,
		Status:              arg.Status,
		SourceTransactionID: arg.SourceTransactionID,
		TransactionID:       arg.TransactionID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	q.t.commissions[c.ID] = c
	q.t.commOrder = append(q.t.commOrder, c.ID)
	return c, nil
}

func (q *querier) UpdateReferralCommissionStatus(_ context.Context, arg store.UpdateReferralCommissionStatusParams) (store.ReferralCommission, error) {
	c, ok := q.t.commissions[arg.ID]
	if !ok {
		return store.ReferralCommission{}, store.ErrNotFound
	}
	c.Status = arg.Status
	c.UpdatedAt = time.Now()
	q.t.commissions[arg.ID] = c
	return c, nil
}

func (q *querier) ListCommissionsByUser(_ context.Context, arg store.ListCommissionsByUserParams) ([]store.ReferralCommission, error) {
	var out []store.ReferralCommission
	for i := len(q.t.commOrder) - 1; i >= 0; i-- {
		if c := q.t.commissions[q.t.commOrder[i]]; c.UserID == arg.UserID {
			out = append(out, c)
		}
	}
	return paginate(out, arg.Limit, arg.Offset), nil
}

func (q *querier) ListCommissionsBySource(_ context.Context, sourceTransactionID uuid.UUID) ([]store.ReferralCommission, error) {
	var out []store.ReferralCommission
	for _, id := range q.t.commOrder {
		if c := q.t.commissions[id]; c.SourceTransactionID == sourceTransactionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (q *querier) GetUser(_ context.Context, id int64) (store.User, error) {
	u, ok := q.t.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (q *querier) ListAdmins(_ context.Context) ([]store.User, error) {
	var out []store.User
	for _, u := range q.t.users {
		if u.Role == "admin" {
			out = append(out, u)
		}
	}
	return out, nil
}

func (q *querier) GetMiningPackage(_ context.Context, id int64) (store.MiningPackage, error) {
	p, ok := q.t.packages[id]
	if !ok {
		return store.MiningPackage{}, store.ErrNotFound
	}
	return p, nil
}

func (q *querier) ListActiveMiningPackages(_ context.Context) ([]store.MiningPackage, error) {
	var out []store.MiningPackage
	for _, p := range q.t.packages {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (q *querier) GetSetting(_ context.Context, key string) (store.Setting, error) {
	s, ok := q.t.settings[key]
	if !ok {
		return store.Setting{}, store.ErrNotFound
	}
	return s, nil
}

func (q *querier) CreateNotification(_ context.Context, arg store.CreateNotificationParams) (store.Notification, error) {
	q.t.nextNotifID++
	n := store.Notification{
		ID:        q.t.nextNotifID,
		UserID:    arg.UserID,
		Kind:      arg.Kind,
		Title:     arg.Title,
		Message:   arg.Message,
		Data:      arg.Data,
		CreatedAt: time.Now(),
	}
	q.t.notifications = append(q.t.notifications, n)
	return n, nil
}

func (q *querier) ListNotificationsByUser(_ context.Context, arg store.ListNotificationsByUserParams) ([]store.Notification, error) {
	var out []store.Notification
	for i := len(q.t.notifications) - 1; i >= 0; i-- {
		if q.t.notifications[i].UserID == arg.UserID {
			out = append(out, q.t.notifications[i])
		}
	}
	return paginate(out, arg.Limit, arg.Offset), nil
}
