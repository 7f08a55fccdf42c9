package transaction

import (
	"database/sql"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionModel struct {
	ID          uuid.UUID       `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ReferenceID string          `json:"reference_id"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

func ToTransactionModel(t store.Transaction) *TransactionModel {
	m := &TransactionModel{
		ID:          t.ID,
		UserID:      t.UserID,
		Type:        t.Type,
		Amount:      t.Amount,
		Fee:         t.Fee,
		Currency:    t.Currency,
		Status:      t.Status,
		ReferenceID: t.ReferenceID,
		TxHash:      t.TxHash.String,
		Description: t.Description.String,
		CreatedAt:   t.CreatedAt,
	}
	if t.ProcessedAt.Valid {
		processed := t.ProcessedAt.Time
		m.ProcessedAt = &processed
	}
	return m
}

// CreateParams describes a journal entry to be inserted in pending status.
type CreateParams struct {
	UserID      int64
	Type        string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Currency    string
	TxHash      string
	Description string
	RewardDate  *time.Time
}

func (p CreateParams) toStore() store.CreateTransactionParams {
	arg := store.CreateTransactionParams{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Type:        p.Type,
		Amount:      p.Amount,
		Fee:         p.Fee,
		Currency:    p.Currency,
		Status:      StatusPending,
		ReferenceID: NewReference(p.Type),
	}
	if p.TxHash != "" {
		arg.TxHash = sql.NullString{String: p.TxHash, Valid: true}
	}
	if p.Description != "" {
		arg.Description = sql.NullString{String: p.Description, Valid: true}
	}
	if p.RewardDate != nil {
		arg.RewardDate = sql.NullTime{Time: *p.RewardDate, Valid: true}
	}
	return arg
}
