package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Querier is implemented by *Queries and by the in-memory store used in
// service tests.
type Querier interface {
	// wallets
	GetWallet(ctx context.Context, arg GetWalletParams) (Wallet, error)
	GetWalletForUpdate(ctx context.Context, arg GetWalletParams) (Wallet, error)
	CreateWallet(ctx context.Context, arg CreateWalletParams) (Wallet, error)
	UpdateWalletBalances(ctx context.Context, arg UpdateWalletBalancesParams) (Wallet, error)
	ListWalletsByUser(ctx context.Context, userID int64) ([]Wallet, error)

	// transactions
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error)
	GetTransactionByReference(ctx context.Context, referenceID string) (Transaction, error)
	UpdateTransactionStatus(ctx context.Context, arg UpdateTransactionStatusParams) (Transaction, error)
	ListTransactionsByUser(ctx context.Context, arg ListTransactionsByUserParams) ([]Transaction, error)

	// mining holdings
	CreateMiningHolding(ctx context.Context, arg CreateMiningHoldingParams) (MiningHolding, error)
	GetMiningHolding(ctx context.Context, id int64) (MiningHolding, error)
	GetMiningHoldingForUpdate(ctx context.Context, id int64) (MiningHolding, error)
	ListHoldingsByUser(ctx context.Context, userID int64) ([]MiningHolding, error)
	ListActiveHoldings(ctx context.Context, asOf time.Time) ([]MiningHolding, error)
	SumActiveMiningPower(ctx context.Context, arg SumActiveMiningPowerParams) (decimal.Decimal, error)
	ExpireHoldings(ctx context.Context, asOf time.Time) ([]MiningHolding, error)
	UpdateHoldingStatus(ctx context.Context, arg UpdateHoldingStatusParams) (MiningHolding, error)

	// referral commissions
	CreateReferralCommission(ctx context.Context, arg CreateReferralCommissionParams) (ReferralCommission, error)
	UpdateReferralCommissionStatus(ctx context.Context, arg UpdateReferralCommissionStatusParams) (ReferralCommission, error)
	ListCommissionsByUser(ctx context.Context, arg ListCommissionsByUserParams) ([]ReferralCommission, error)
	ListCommissionsBySource(ctx context.Context, sourceTransactionID uuid.UUID) ([]ReferralCommission, error)

	// users
	GetUser(ctx context.Context, id int64) (User, error)
	ListAdmins(ctx context.Context) ([]User, error)

	// mining packages
	GetMiningPackage(ctx context.Context, id int64) (MiningPackage, error)
	ListActiveMiningPackages(ctx context.Context) ([]MiningPackage, error)

	// settings
	GetSetting(ctx context.Context, key string) (Setting, error)

	// notifications
	CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error)
	ListNotificationsByUser(ctx context.Context, arg ListNotificationsByUserParams) ([]Notification, error)
}

var _ Querier = (*Queries)(nil)
