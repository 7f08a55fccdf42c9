package mining

import (
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/shopspring/decimal"
)

// Holding lifecycle. Expiry is driven by the sweep job, not by reads.
const (
	HoldingStatusPending   = "pending"
	HoldingStatusActive    = "active"
	HoldingStatusExpired   = "expired"
	HoldingStatusCancelled = "cancelled"
)

type PackageModel struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	MiningPower     decimal.Decimal `json:"mining_power"`
	DailyRewardRate decimal.Decimal `json:"daily_reward_rate"`
	DurationDays    int32           `json:"duration_days,omitempty"`
}

func ToPackageModel(p store.MiningPackage) *PackageModel {
	m := &PackageModel{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Currency:        p.Currency,
		MiningPower:     p.MiningPower,
		DailyRewardRate: p.DailyRewardRate,
	}
	if p.DurationDays.Valid {
		m.DurationDays = p.DurationDays.Int32
	}
	return m
}

// HoldingModel carries the purchase-time snapshot; later package edits never
// touch it.
type HoldingModel struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	PackageID       int64           `json:"package_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	MiningPower     decimal.Decimal `json:"mining_power"`
	DailyRewardRate decimal.Decimal `json:"daily_reward_rate"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToHoldingModel(h store.MiningHolding) *HoldingModel {
	m := &HoldingModel{
		ID:              h.ID,
		UserID:          h.UserID,
		PackageID:       h.PackageID,
		Amount:          h.Amount,
		Currency:        h.Currency,
		MiningPower:     h.MiningPower,
		DailyRewardRate: h.DailyRewardRate,
		StartDate:       h.StartDate,
		Status:          h.Status,
		CreatedAt:       h.CreatedAt,
	}
	if h.EndDate.Valid {
		end := h.EndDate.Time
		m.EndDate = &end
	}
	return m
}

// DailyReward is the amount one holding earns per accrual day.
func DailyReward(power, rate decimal.Decimal) decimal.Decimal {
	return power.Mul(rate).Div(decimal.NewFromInt(100))
}
