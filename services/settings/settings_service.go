// Package settings exposes the platform's tunable numbers (referral depth,
// per-level percentages, withdrawal minimums) to the engine. It is read-only
// here: writes happen through admin tooling outside this repository.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Keys the engine reads.
const (
	KeyReferralMaxLevels = "referral_max_levels"
	KeyMinWithdrawal     = "min_withdrawal"
	KeyWithdrawalFee     = "withdrawal_fee_percent"
)

// LevelPercentKey returns the settings key holding the commission percentage
// for one referral level.
func LevelPercentKey(level int) string {
	return fmt.Sprintf("referral_level_%d_percent", level)
}

var ErrUnavailable = errors.New("settings store unavailable")

// Service caches settings in-process with explicit invalidation, so the
// engine never reads process-global state.
type Service struct {
	store  store.Store
	cache  *cache.Cache
	logger *logging.Logger
}

func NewSettingsService(store store.Store, logger *logging.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// get returns the raw value, or ok=false when the key does not exist.
func (s *Service) get(ctx context.Context, key string) (string, bool, error) {
	if v, found := s.cache.Get(key); found {
		return v.(string), true, nil
	}

	setting, err := s.store.GetSetting(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.cache.Set(key, setting.Value, cache.DefaultExpiration)
	return setting.Value, true, nil
}

// GetInt returns the configured integer, or def when the key is absent or
// malformed. Storage failure is reported, never swallowed into the default.
func (s *Service) GetInt(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("setting %s holds non-integer %q, using default", key, raw))
		return def, nil
	}
	return n, nil
}

// GetDecimal returns the configured decimal, or def when the key is absent or
// malformed.
func (s *Service) GetDecimal(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("setting %s holds non-numeric %q, using default", key, raw))
		return def, nil
	}
	return d, nil
}

// Invalidate drops one cached key so the next read hits storage.
func (s *Service) Invalidate(key string) {
	s.cache.Delete(key)
}

// InvalidateAll flushes the cache.
func (s *Service) InvalidateAll() {
	s.cache.Flush()
}
