package wallet

import (
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
	StatusFrozen   = "frozen"
)

type WalletModel struct {
	ID            uuid.UUID       `json:"id"`
	UserID        int64           `json:"user_id"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
	Available     decimal.Decimal `json:"available"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToWalletModel(w store.Wallet) *WalletModel {
	return &WalletModel{
		ID:            w.ID,
		UserID:        w.UserID,
		Currency:      w.Currency,
		Balance:       w.Balance,
		LockedBalance: w.LockedBalance,
		Available:     w.Balance.Sub(w.LockedBalance),
		Status:        w.Status,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}
