// Package referral pays multi-level commissions when a referred user's
// deposit, purchase or mining reward lands. Each level is its own unit of
// work; a failure at level 2 never claws back level 1.
package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/settings"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/user"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source event kinds a cascade can be triggered by. They are stored on the
// commission row so statements can attribute earnings.
const (
	KindDeposit  = "deposit"
	KindPurchase = "purchase"
	KindMining   = "mining_reward"
)

const defaultMaxLevels = 2

var _ transaction.Cascader = (*Service)(nil)

type Service struct {
	store    store.Store
	users    *user.Service
	settings *settings.Service
	currency string
	logger   *logging.Logger
}

func NewReferralService(store store.Store, users *user.Service, settings *settings.Service, currency string, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		users:    users,
		settings: settings,
		currency: currency,
		logger:   logger,
	}
}

// Result describes the outcome of one level of a cascade. CommissionID is
// zero when the level was skipped as a replay.
type Result struct {
	CommissionID int64
	Level        int
	UserID       int64
	Amount       decimal.Decimal
	Status       string
	Skipped      bool
	Err          error
}

// Distribute walks the referrer chain of referralID and pays each eligible
// upline a percentage of amount. The walk stops at the configured max level
// or when the chain runs out, whichever comes first. Commission and journal
// row are written together with the wallet credit; the unique constraint on
// (source_transaction_id, user_id, level) makes a replay of the same source
// event a no-op.
func (s *Service) Distribute(ctx context.Context, referralID int64, amount decimal.Decimal, kind string, sourceTransactionID uuid.UUID) ([]Result, error) {
	if !amount.IsPositive() {
		return nil, nil
	}

	maxLevels, err := s.settings.GetInt(ctx, settings.KeyReferralMaxLevels, defaultMaxLevels)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, maxLevels)
	current := referralID
	for level := 1; level <= maxLevels; level++ {
		u, err := s.users.GetUser(ctx, current)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				break
			}
			return results, err
		}
		if u.ReferredBy == 0 {
			break
		}

		beneficiary, err := s.users.GetUser(ctx, u.ReferredBy)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				break
			}
			return results, err
		}

		res := s.payLevel(ctx, beneficiary, referralID, level, amount, kind, sourceTransactionID)
		if res != nil {
			results = append(results, *res)
		}
		if res != nil && res.Err != nil && errors.Is(res.Err, settings.ErrUnavailable) {
			return results, res.Err
		}

		current = beneficiary.ID
	}

	return results, nil
}

// payLevel pays one upline. A nil result means the level produced nothing to
// record (zero rate, or a suspended beneficiary).
func (s *Service) payLevel(ctx context.Context, beneficiary *user.User, referralID int64, level int, amount decimal.Decimal, kind string, sourceTransactionID uuid.UUID) *Result {
	pct, err := s.settings.GetDecimal(ctx, settings.LevelPercentKey(level), decimal.Zero)
	if err != nil {
		// Rate unknown, amount uncomputable. The failed row still goes into
		// the audit trail with a zero amount.
		s.recordFailure(ctx, beneficiary.ID, referralID, level, decimal.Zero, kind, sourceTransactionID)
		return &Result{Level: level, UserID: beneficiary.ID, Status: transaction.StatusFailed, Err: err}
	}
	if !pct.IsPositive() {
		return nil
	}
	if beneficiary.Status != user.StatusActive {
		return nil
	}

	commission := amount.Mul(pct).Div(decimal.NewFromInt(100))
	if !commission.IsPositive() {
		return nil
	}

	res := Result{Level: level, UserID: beneficiary.ID, Amount: commission}

	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		t, err := transaction.CreateInTx(ctx, q, transaction.CreateParams{
			UserID:      beneficiary.ID,
			Type:        transaction.TypeReferralCommission,
			Amount:      commission,
			Currency:    s.currency,
			Description: fmt.Sprintf("Level %d commission on %s", level, kind),
		})
		if err != nil {
			return err
		}

		c, err := q.CreateReferralCommission(ctx, store.CreateReferralCommissionParams{
			UserID:              beneficiary.ID,
			ReferralID:          referralID,
			Amount:              commission,
			Currency:            s.currency,
			Type:                kind,
			Level:               int32(level),
			Status:              transaction.StatusCompleted,
			SourceTransactionID: sourceTransactionID,
			TransactionID:       uuid.NullUUID{UUID: t.ID, Valid: true},
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return transaction.ErrDuplicateEvent
			}
			return err
		}
		res.CommissionID = c.ID

		if _, err := wallet.CreditInTx(ctx, q, beneficiary.ID, s.currency, commission); err != nil {
			return err
		}

		_, err = transaction.CompleteInTx(ctx, q, t)
		return err
	})

	switch {
	case err == nil:
		res.Status = transaction.StatusCompleted
	case errors.Is(err, transaction.ErrDuplicateEvent):
		res.Status = transaction.StatusCompleted
		res.Skipped = true
	default:
		res.CommissionID = 0
		res.Err = err
		res.Status = transaction.StatusFailed
		s.recordFailure(ctx, beneficiary.ID, referralID, level, commission, kind, sourceTransactionID)
	}

	return &res
}

// recordFailure leaves an audit trail for a cascade level whose unit rolled
// back. Best effort; the duplicate guard still applies.
func (s *Service) recordFailure(ctx context.Context, userID, referralID int64, level int, commission decimal.Decimal, kind string, sourceTransactionID uuid.UUID) {
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		_, err := q.CreateReferralCommission(ctx, store.CreateReferralCommissionParams{
			UserID:              userID,
			ReferralID:          referralID,
			Amount:              commission,
			Currency:            s.currency,
			Type:                kind,
			Level:               int32(level),
			Status:              transaction.StatusFailed,
			SourceTransactionID: sourceTransactionID,
		})
		return err
	})
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		s.logger.Error(fmt.Sprintf("record failed commission for user %d level %d: %v", userID, level, err))
	}
}

// Cascade satisfies the journal's hook. Distribution errors are logged; the
// triggering deposit, purchase or reward has already committed and stands.
func (s *Service) Cascade(ctx context.Context, referralID int64, amount decimal.Decimal, kind string, sourceTransactionID uuid.UUID) {
	results, err := s.Distribute(ctx, referralID, amount, kind, sourceTransactionID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("referral cascade for user %d source %s: %v", referralID, sourceTransactionID, err))
	}
	for _, r := range results {
		if r.Err != nil {
			s.logger.Error(fmt.Sprintf("commission level %d for user %d failed: %v", r.Level, r.UserID, r.Err))
		}
	}
}

// ListCommissions returns a user's commission history, newest first.
func (s *Service) ListCommissions(ctx context.Context, userID int64, limit, offset int32) ([]*CommissionModel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.store.ListCommissionsByUser(ctx, store.ListCommissionsByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*CommissionModel, 0, len(rows))
	for _, c := range rows {
		out = append(out, ToCommissionModel(c))
	}
	return out, nil
}
