package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID            int64
	Email         string
	ReferredBy    sql.NullInt64
	Status        string
	Role          string
	ExpoPushToken sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Wallet struct {
	ID            uuid.UUID
	UserID        int64
	Currency      string
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Transaction struct {
	ID          uuid.UUID
	UserID      int64
	Type        string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Currency    string
	Status      string
	ReferenceID string
	TxHash      sql.NullString
	RewardDate  sql.NullTime
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt sql.NullTime
}

type MiningPackage struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	Currency        string
	MiningPower     decimal.Decimal
	DailyRewardRate decimal.Decimal
	DurationDays    sql.NullInt32
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type MiningHolding struct {
	ID              int64
	UserID          int64
	PackageID       int64
	Amount          decimal.Decimal
	Currency        string
	MiningPower     decimal.Decimal
	DailyRewardRate decimal.Decimal
	StartDate       time.Time
	EndDate         sql.NullTime
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ReferralCommission struct {
	ID                  int64
	UserID              int64
	ReferralID          int64
	Amount              decimal.Decimal
	Currency            string
	Type                string
	Level               int32
	Status              string
	SourceTransactionID uuid.UUID
	TransactionID       uuid.NullUUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type Notification struct {
	ID        int64
	UserID    int64
	Kind      string
	Title     string
	Message   string
	Data      []byte
	Read      bool
	CreatedAt time.Time
}
