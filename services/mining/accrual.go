package mining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/shopspring/decimal"
)

const (
	accrualStatsKey = "mining:accrual:last"
	accrualStatsTTL = 48 * time.Hour
)

// AccrualStats summarizes one run of the daily reward job.
type AccrualStats struct {
	Date        time.Time       `json:"date"`
	Processed   int             `json:"processed"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
}

type userAccrual struct {
	userID   int64
	currency string
	amount   decimal.Decimal
}

// RunAccrual pays every user with active holdings their reward for the given
// date. Each (user, currency) pair is one atomic unit; the partial unique
// index on (user_id, currency, reward_date) turns a re-run into skips instead
// of double pay. Cancellation is honored between units, never inside one.
func (s *Service) RunAccrual(ctx context.Context, date time.Time) (*AccrualStats, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	stats := &AccrualStats{Date: day, TotalAmount: decimal.Zero, StartedAt: time.Now().UTC()}

	holdings, err := s.store.ListActiveHoldings(ctx, day)
	if err != nil {
		return stats, err
	}

	accruals := groupAccruals(holdings)
	s.logger.Info(fmt.Sprintf("accrual %s: %d holdings across %d users", day.Format("2006-01-02"), len(holdings), len(accruals)))

	for _, acc := range accruals {
		if err := ctx.Err(); err != nil {
			s.storeStats(ctx, stats)
			return stats, err
		}
		if !acc.amount.IsPositive() {
			stats.Skipped++
			continue
		}
		s.accrueUser(ctx, acc, day, stats)
	}

	stats.FinishedAt = time.Now().UTC()
	s.storeStats(ctx, stats)
	return stats, nil
}

// accrueUser runs one user's reward unit and the post-commit hooks.
func (s *Service) accrueUser(ctx context.Context, acc userAccrual, day time.Time, stats *AccrualStats) {
	var entry store.Transaction
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		t, err := transaction.CreateInTx(ctx, q, transaction.CreateParams{
			UserID:      acc.userID,
			Type:        transaction.TypeMiningReward,
			Amount:      acc.amount,
			Currency:    acc.currency,
			Description: fmt.Sprintf("Mining reward for %s", day.Format("2006-01-02")),
			RewardDate:  &day,
		})
		if err != nil {
			return err
		}
		if _, err := wallet.CreditInTx(ctx, q, acc.userID, acc.currency, acc.amount); err != nil {
			return err
		}
		entry, err = transaction.CompleteInTx(ctx, q, t)
		return err
	})

	switch {
	case err == nil:
		stats.Processed++
		stats.TotalAmount = stats.TotalAmount.Add(acc.amount)
		if s.cascade != nil {
			s.cascade.Cascade(ctx, acc.userID, acc.amount, "mining_reward", entry.ID)
		}
		s.notifier.NotifyUser(ctx, acc.userID, "mining_reward", "Daily mining reward",
			fmt.Sprintf("You earned %s %s from your mining packages.", acc.amount, acc.currency),
			map[string]interface{}{"reference": entry.ReferenceID})
	case errors.Is(err, transaction.ErrDuplicateEvent):
		stats.Skipped++
	default:
		stats.Failed++
		s.logger.Error(fmt.Sprintf("accrual for user %d on %s: %v", acc.userID, day.Format("2006-01-02"), err))
	}
}

// groupAccruals folds holdings into one reward per (user, currency), ordered
// so runs are reproducible. A user holding packages in several currencies
// gets a separate reward per currency wallet. Zero-reward entries stay in the
// result; the run counts them as skipped.
func groupAccruals(holdings []store.MiningHolding) []userAccrual {
	type key struct {
		userID   int64
		currency string
	}
	byWallet := make(map[key]*userAccrual)
	for _, h := range holdings {
		reward := DailyReward(h.MiningPower, h.DailyRewardRate)
		k := key{userID: h.UserID, currency: h.Currency}
		if acc, ok := byWallet[k]; ok {
			acc.amount = acc.amount.Add(reward)
			continue
		}
		byWallet[k] = &userAccrual{userID: h.UserID, currency: h.Currency, amount: reward}
	}

	out := make([]userAccrual, 0, len(byWallet))
	for _, acc := range byWallet {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].userID != out[j].userID {
			return out[i].userID < out[j].userID
		}
		return out[i].currency < out[j].currency
	})
	return out
}

// LastAccrualStats returns the stats of the most recent run, if the cache
// still has them.
func (s *Service) LastAccrualStats(ctx context.Context) (*AccrualStats, error) {
	if s.redis == nil {
		return nil, nil
	}
	raw, err := s.redis.Get(ctx, accrualStatsKey)
	if services.IsMiss(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats AccrualStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) storeStats(ctx context.Context, stats *AccrualStats) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		s.logger.Error(fmt.Sprintf("marshal accrual stats: %v", err))
		return
	}
	if err := s.redis.Set(ctx, accrualStatsKey, string(raw), accrualStatsTTL); err != nil {
		s.logger.Warn(fmt.Sprintf("store accrual stats: %v", err))
	}
}
