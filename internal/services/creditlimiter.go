package services

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreditLimiter enforces the calendar-window earn and spend caps. A cap
// of zero disables that check. Windows are calendar-aligned in the
// configured timezone; weeks start on Monday.
type CreditLimiter struct {
	ledgerRepo    repositories.LedgerRepository
	dailyEarnCap  int64
	weeklyEarnCap int64
	dailySpendCap int64
	tz            *time.Location
}

// NewCreditLimiter creates a new CreditLimiter
func NewCreditLimiter(ledgerRepo repositories.LedgerRepository, cfg *config.Config) *CreditLimiter {
	return &CreditLimiter{
		ledgerRepo:    ledgerRepo,
		dailyEarnCap:  cfg.Rewards.DailyEarnCap,
		weeklyEarnCap: cfg.Rewards.WeeklyEarnCap,
		dailySpendCap: cfg.Rewards.DailySpendCap,
		tz:            cfg.Location(),
	}
}

// AuthorizeEarn rejects an award that would push the player past the
// daily or weekly earn cap. Landing exactly on the cap is allowed.
func (l *CreditLimiter) AuthorizeEarn(ctx context.Context, playerID primitive.ObjectID, amount int64, at time.Time) error {
	earnKinds := []models.EntryKind{models.EntryEarned, models.EntryBonus}

	if l.dailyEarnCap > 0 {
		earned, err := l.ledgerRepo.SumKindsSince(ctx, playerID, earnKinds, l.DayStart(at))
		if err != nil {
			return types.NewStoreUnavailable("failed to total daily earnings", err)
		}
		if earned+amount > l.dailyEarnCap {
			return types.NewPolicyDenied("daily earn cap reached: %d of %d credits earned today", earned, l.dailyEarnCap)
		}
	}

	if l.weeklyEarnCap > 0 {
		earned, err := l.ledgerRepo.SumKindsSince(ctx, playerID, earnKinds, l.WeekStart(at))
		if err != nil {
			return types.NewStoreUnavailable("failed to total weekly earnings", err)
		}
		if earned+amount > l.weeklyEarnCap {
			return types.NewPolicyDenied("weekly earn cap reached: %d of %d credits earned this week", earned, l.weeklyEarnCap)
		}
	}

	return nil
}

// AuthorizeSpend rejects a spend that would push the player past the
// daily spend cap.
func (l *CreditLimiter) AuthorizeSpend(ctx context.Context, playerID primitive.ObjectID, amount int64, at time.Time) error {
	if l.dailySpendCap <= 0 {
		return nil
	}
	spent, err := l.ledgerRepo.SumKindsSince(ctx, playerID, []models.EntryKind{models.EntrySpent}, l.DayStart(at))
	if err != nil {
		return types.NewStoreUnavailable("failed to total daily spending", err)
	}
	if spent+amount > l.dailySpendCap {
		return types.NewPolicyDenied("daily spend cap reached: %d of %d credits spent today", spent, l.dailySpendCap)
	}
	return nil
}

// DayStart returns midnight of the calendar day containing at.
func (l *CreditLimiter) DayStart(at time.Time) time.Time {
	t := at.In(l.tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.tz)
}

// WeekStart returns midnight of the Monday of the week containing at.
func (l *CreditLimiter) WeekStart(at time.Time) time.Time {
	day := l.DayStart(at)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
