// Package mining tracks purchased mining contracts and accrues their daily
// rewards. A holding is an immutable snapshot of the package it was bought
// from; only its status moves.
package mining

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/notification"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/shopspring/decimal"
)

const powerCacheTTL = 5 * time.Minute

type Service struct {
	store    store.Store
	catalog  *Catalog
	notifier *notification.Service
	cascade  transaction.Cascader
	redis    *services.RedisService
	logger   *logging.Logger
}

// NewMiningService wires the holding tracker. redis may be nil; aggregate
// power then always hits the database.
func NewMiningService(store store.Store, catalog *Catalog, notifier *notification.Service, redis *services.RedisService, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		redis:    redis,
		logger:   logger,
	}
}

// SetCascader attaches the referral hook after construction, mirroring the
// journal service.
func (s *Service) SetCascader(c transaction.Cascader) {
	s.cascade = c
}

// ListPackages exposes the catalog's active package list.
func (s *Service) ListPackages(ctx context.Context) ([]*PackageModel, error) {
	return s.catalog.ListPackages(ctx)
}

// Purchase buys a package for the user: one unit writes the purchase journal
// entry, debits the wallet and creates the holding. Any failure, including
// insufficient funds, leaves no trace of the attempt.
func (s *Service) Purchase(ctx context.Context, userID int64, packageID int64) (*HoldingModel, error) {
	pkg, err := s.catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	var (
		holding store.MiningHolding
		entry   store.Transaction
	)
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		t, err := transaction.CreateInTx(ctx, q, transaction.CreateParams{
			UserID:      userID,
			Type:        transaction.TypePurchase,
			Amount:      pkg.Price,
			Currency:    pkg.Currency,
			Description: fmt.Sprintf("Purchase of mining package %q", pkg.Name),
		})
		if err != nil {
			return err
		}

		if _, err := wallet.DebitInTx(ctx, q, userID, pkg.Currency, pkg.Price); err != nil {
			return err
		}

		start := time.Now().UTC()
		arg := store.CreateMiningHoldingParams{
			UserID:          userID,
			PackageID:       pkg.ID,
			Amount:          pkg.Price,
			Currency:        pkg.Currency,
			MiningPower:     pkg.MiningPower,
			DailyRewardRate: pkg.DailyRewardRate,
			StartDate:       start,
			Status:          HoldingStatusActive,
		}
		if pkg.DurationDays.Valid {
			arg.EndDate = sql.NullTime{Time: start.AddDate(0, 0, int(pkg.DurationDays.Int32)), Valid: true}
		}
		if holding, err = q.CreateMiningHolding(ctx, arg); err != nil {
			return err
		}

		entry, err = transaction.CompleteInTx(ctx, q, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePower(ctx, userID)
	if s.cascade != nil {
		s.cascade.Cascade(ctx, userID, pkg.Price, "purchase", entry.ID)
	}
	s.notifier.NotifyUser(ctx, userID, "mining_purchase", "Mining package activated",
		fmt.Sprintf("Your %s package is now mining at %s TH/s.", pkg.Name, pkg.MiningPower),
		map[string]interface{}{"holding_id": holding.ID, "reference": entry.ReferenceID})

	return ToHoldingModel(holding), nil
}

// ListHoldings returns all of a user's holdings regardless of status.
func (s *Service) ListHoldings(ctx context.Context, userID int64) ([]*HoldingModel, error) {
	rows, err := s.store.ListHoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*HoldingModel, 0, len(rows))
	for _, h := range rows {
		out = append(out, ToHoldingModel(h))
	}
	return out, nil
}

// AggregatePower sums the mining power of the user's active, unexpired
// holdings, serving from redis when the cache is warm.
func (s *Service) AggregatePower(ctx context.Context, userID int64) (decimal.Decimal, error) {
	key := powerCacheKey(userID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key); err == nil {
			if power, perr := decimal.NewFromString(cached); perr == nil {
				return power, nil
			}
		} else if !services.IsMiss(err) {
			s.logger.Warn(fmt.Sprintf("mining power cache read for user %d: %v", userID, err))
		}
	}

	power, err := s.store.SumActiveMiningPower(ctx, store.SumActiveMiningPowerParams{
		UserID: userID,
		AsOf:   time.Now().UTC(),
	})
	if err != nil {
		return decimal.Zero, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, power.String(), powerCacheTTL); err != nil {
			s.logger.Warn(fmt.Sprintf("mining power cache write for user %d: %v", userID, err))
		}
	}
	return power, nil
}

// SweepExpired marks every active holding whose end date has passed as
// expired and returns the newly expired rows. Running it twice in a row is
// harmless; the second sweep finds nothing.
func (s *Service) SweepExpired(ctx context.Context) ([]*HoldingModel, error) {
	rows, err := s.store.ExpireHoldings(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	out := make([]*HoldingModel, 0, len(rows))
	for _, h := range rows {
		out = append(out, ToHoldingModel(h))
		s.invalidatePower(ctx, h.UserID)
		s.notifier.NotifyUser(ctx, h.UserID, "mining_expired", "Mining package expired",
			fmt.Sprintf("Your mining package holding #%d has reached the end of its term.", h.ID),
			map[string]interface{}{"holding_id": h.ID})
	}
	if len(out) > 0 {
		s.logger.Info(fmt.Sprintf("expired %d mining holdings", len(out)))
	}
	return out, nil
}

// Cancel stops a pending or active holding. No part of the purchase price is
// refunded; the reason only lands in the log.
func (s *Service) Cancel(ctx context.Context, userID int64, holdingID int64, reason string) (*HoldingModel, error) {
	var updated store.MiningHolding
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		h, err := q.GetMiningHoldingForUpdate(ctx, holdingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrHoldingNotFound
		}
		if err != nil {
			return err
		}
		if h.UserID != userID {
			return ErrNotYours
		}
		if h.Status != HoldingStatusPending && h.Status != HoldingStatusActive {
			return fmt.Errorf("%w: %s", ErrInvalidHoldingState, h.Status)
		}

		updated, err = q.UpdateHoldingStatus(ctx, store.UpdateHoldingStatusParams{
			ID:     holdingID,
			Status: HoldingStatusCancelled,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("holding %d cancelled by user %d: %s", holdingID, userID, reason))
	s.invalidatePower(ctx, userID)
	return ToHoldingModel(updated), nil
}

func (s *Service) invalidatePower(ctx context.Context, userID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, powerCacheKey(userID)); err != nil {
		s.logger.Warn(fmt.Sprintf("mining power cache invalidation for user %d: %v", userID, err))
	}
}

func powerCacheKey(userID int64) string {
	return fmt.Sprintf("mining:power:%d", userID)
}
