// Package transaction is the journal: every balance-affecting event is
// recorded here with a status lifecycle and a unique client-facing reference.
// The journal never mutates wallets on its own; flows pair the journal write
// with the matching ledger call inside one atomic unit, so a transaction is
// completed if and only if its balance effect committed.
package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/notification"
	"github.com/MineVault/MineVault-Backend/services/settings"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cascader posts referral commissions for a committed monetary event. It is
// invoked after the triggering unit commits; its failures are its own.
type Cascader interface {
	Cascade(ctx context.Context, referralID int64, amount decimal.Decimal, kind string, sourceTransactionID uuid.UUID)
}

type Service struct {
	store    store.Store
	settings *settings.Service
	notifier *notification.Service
	cascade  Cascader
	logger   *logging.Logger
}

func NewTransactionService(store store.Store, settings *settings.Service, notifier *notification.Service, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		settings: settings,
		notifier: notifier,
		logger:   logger,
	}
}

// SetCascader wires the referral cascade in. Optional; deposits simply skip
// commission posting when absent.
func (s *Service) SetCascader(c Cascader) {
	s.cascade = c
}

// Create inserts a pending journal entry. The reference is regenerated when
// it collides with an existing row.
func (s *Service) Create(ctx context.Context, p CreateParams) (*TransactionModel, error) {
	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var t store.Transaction
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		t, err = s.store.CreateTransaction(ctx, p.toStore())
		if !errors.Is(err, store.ErrDuplicateReference) {
			break
		}
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateEvent
	}
	if err != nil {
		return nil, err
	}
	return ToTransactionModel(t), nil
}

// Get returns one journal entry by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TransactionModel, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToTransactionModel(t), nil
}

// History lists a user's journal entries, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int32) ([]*TransactionModel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.store.ListTransactionsByUser(ctx, store.ListTransactionsByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*TransactionModel, len(rows))
	for i, t := range rows {
		out[i] = ToTransactionModel(t)
	}
	return out, nil
}

// UpdateStatus applies one edge of the lifecycle, rejecting everything the
// edge table does not allow.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*TransactionModel, error) {
	var t store.Transaction
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		t, err = TransitionInTx(ctx, q, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionModel(t), nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*TransactionModel, error) {
	return s.UpdateStatus(ctx, id, StatusCompleted)
}

func (s *Service) Fail(ctx context.Context, id uuid.UUID) (*TransactionModel, error) {
	return s.UpdateStatus(ctx, id, StatusFailed)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*TransactionModel, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

// Deposit credits externally received funds: journal row, ledger credit and
// completion in one unit. The referral cascade and the user notification run
// after commit.
func (s *Service) Deposit(ctx context.Context, userID int64, currency string, amount decimal.Decimal, txHash string) (*TransactionModel, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var t store.Transaction
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		t, err = CreateInTx(ctx, q, CreateParams{
			UserID:   userID,
			Type:     TypeDeposit,
			Amount:   amount,
			Currency: currency,
			TxHash:   txHash,
		})
		if err != nil {
			return err
		}
		if _, err := wallet.CreditInTx(ctx, q, userID, currency, amount); err != nil {
			return err
		}
		t, err = CompleteInTx(ctx, q, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	if s.cascade != nil {
		s.cascade.Cascade(ctx, userID, amount, "deposit", t.ID)
	}
	s.notifier.NotifyUser(ctx, userID, "deposit", "Deposit received",
		fmt.Sprintf("Your deposit of %s %s has been credited.", amount, currency),
		map[string]interface{}{"reference": t.ReferenceID})

	return ToTransactionModel(t), nil
}

// RequestWithdrawal creates a pending withdrawal and locks amount plus fee.
// Settlement happens out of band; see CompleteWithdrawal and CancelWithdrawal.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*TransactionModel, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	min, err := s.settings.GetDecimal(ctx, settings.KeyMinWithdrawal, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(min) {
		return nil, ErrBelowMinimum
	}

	feePercent, err := s.settings.GetDecimal(ctx, settings.KeyWithdrawalFee, decimal.Zero)
	if err != nil {
		return nil, err
	}
	fee := amount.Mul(feePercent).Div(decimal.NewFromInt(100))

	var t store.Transaction
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		t, err = CreateInTx(ctx, q, CreateParams{
			UserID:   userID,
			Type:     TypeWithdrawal,
			Amount:   amount,
			Fee:      fee,
			Currency: currency,
		})
		if err != nil {
			return err
		}
		_, err = wallet.LockInTx(ctx, q, userID, currency, amount.Add(fee))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	s.notifier.NotifyAllAdmins(ctx, "withdrawal_request", "Withdrawal requested",
		fmt.Sprintf("User %d requested a withdrawal of %s %s.", userID, amount, currency),
		map[string]interface{}{"reference": t.ReferenceID})

	return ToTransactionModel(t), nil
}

// CompleteWithdrawal settles a pending withdrawal: the locked funds are
// consumed and the journal entry walks pending→processing→completed, all in
// one unit.
func (s *Service) CompleteWithdrawal(ctx context.Context, id uuid.UUID, txHash string) (*TransactionModel, error) {
	var t store.Transaction
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		t, err = q.GetTransaction(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.Type != TypeWithdrawal {
			return ErrInvalidTransition
		}

		if t, err = TransitionInTx(ctx, q, id, StatusProcessing); err != nil {
			return err
		}
		if _, err := wallet.DebitLockedInTx(ctx, q, t.UserID, t.Currency, t.Amount.Add(t.Fee)); err != nil {
			return err
		}
		t, err = q.UpdateTransactionStatus(ctx, store.UpdateTransactionStatusParams{
			ID:          id,
			Status:      StatusCompleted,
			TxHash:      sql.NullString{String: txHash, Valid: txHash != ""},
			ProcessedAt: sql.NullTime{Time: time.Now(), Valid: true},
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("complete withdrawal: %w", err)
	}

	s.notifier.NotifyUser(ctx, t.UserID, "withdrawal", "Withdrawal sent",
		fmt.Sprintf("Your withdrawal of %s %s has been paid out.", t.Amount, t.Currency),
		map[string]interface{}{"reference": t.ReferenceID, "tx_hash": txHash})

	return ToTransactionModel(t), nil
}

// CancelWithdrawal lets the owner cancel a withdrawal that has not started
// processing. The locked funds return to available.
func (s *Service) CancelWithdrawal(ctx context.Context, userID int64, id uuid.UUID) (*TransactionModel, error) {
	var t store.Transaction
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		t, err = q.GetTransaction(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return ErrNotYours
		}
		if t.Type != TypeWithdrawal {
			return ErrInvalidTransition
		}

		if t, err = TransitionInTx(ctx, q, id, StatusCancelled); err != nil {
			return err
		}
		_, err = wallet.UnlockInTx(ctx, q, userID, t.Currency, t.Amount.Add(t.Fee))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cancel withdrawal: %w", err)
	}
	return ToTransactionModel(t), nil
}

// In-transaction helpers used by flows in this package and by the mining and
// referral services, which pair journal writes with their own entities.

// CreateInTx inserts a pending journal entry inside the caller's unit. A
// collision on the generated reference gets a fresh one and retries within
// the same unit; only a violated idempotency index surfaces as
// ErrDuplicateEvent and fails the unit.
func CreateInTx(ctx context.Context, q store.Querier, p CreateParams) (store.Transaction, error) {
	var t store.Transaction
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		t, err = q.CreateTransaction(ctx, p.toStore())
		if !errors.Is(err, store.ErrDuplicateReference) {
			break
		}
	}
	if errors.Is(err, store.ErrDuplicate) {
		return store.Transaction{}, ErrDuplicateEvent
	}
	return t, err
}

// TransitionInTx applies one lifecycle edge inside the caller's unit.
func TransitionInTx(ctx context.Context, q store.Querier, id uuid.UUID, status string) (store.Transaction, error) {
	t, err := q.GetTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Transaction{}, ErrNotFound
	}
	if err != nil {
		return store.Transaction{}, err
	}
	if !CanTransition(t.Status, status) {
		return store.Transaction{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}

	arg := store.UpdateTransactionStatusParams{ID: id, Status: status}
	if IsTerminal(status) {
		arg.ProcessedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return q.UpdateTransactionStatus(ctx, arg)
}

// CompleteInTx walks a pending entry through processing to completed.
func CompleteInTx(ctx context.Context, q store.Querier, t store.Transaction) (store.Transaction, error) {
	if _, err := TransitionInTx(ctx, q, t.ID, StatusProcessing); err != nil {
		return store.Transaction{}, err
	}
	return TransitionInTx(ctx, q, t.ID, StatusCompleted)
}

// FailInTx walks a pending entry through processing to failed.
func FailInTx(ctx context.Context, q store.Querier, t store.Transaction) (store.Transaction, error) {
	if _, err := TransitionInTx(ctx, q, t.ID, StatusProcessing); err != nil {
		return store.Transaction{}, err
	}
	return TransitionInTx(ctx, q, t.ID, StatusFailed)
}
