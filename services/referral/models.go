package referral

import (
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionModel struct {
	ID                  int64           `json:"id"`
	ReferralID          int64           `json:"referral_id"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	Type                string          `json:"type"`
	Level               int32           `json:"level"`
	Status              string          `json:"status"`
	SourceTransactionID uuid.UUID       `json:"source_transaction_id"`
	CreatedAt           time.Time       `json:"created_at"`
}

func ToCommissionModel(c store.ReferralCommission) *CommissionModel {
	return &CommissionModel{
		ID:                  c.ID,
		ReferralID:          c.ReferralID,
		Amount:              c.Amount,
		Currency:            c.Currency,
		Type:                c.Type,
		Level:               c.Level,
		Status:              c.Status,
		SourceTransactionID: c.SourceTransactionID,
		CreatedAt:           c.CreatedAt,
	}
}
