package services

import (
	"context"
	"testing"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeEarnAllowsLandingOnDailyCap(t *testing.T) {
	fx := newFixture(t)
	fx.seedEarned(fx.player.ID, 90, fx.now.Add(-2*time.Hour))

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 10, fx.now)
	assert.NoError(t, err)
}

func TestAuthorizeEarnDeniesOverDailyCap(t *testing.T) {
	fx := newFixture(t)
	fx.seedEarned(fx.player.ID, 90, fx.now.Add(-2*time.Hour))

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 20, fx.now)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestAuthorizeEarnIgnoresEntriesBeforeToday(t *testing.T) {
	fx := newFixture(t)
	// 95 earned yesterday evening leaves today's budget untouched.
	fx.seedEarned(fx.player.ID, 95, fx.now.Add(-16*time.Hour))

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 100, fx.now)
	assert.NoError(t, err)
}

func TestAuthorizeEarnDeniesOverWeeklyCap(t *testing.T) {
	fx := newFixture(t)
	// Base instant is Wednesday. Monday and Tuesday together bring the
	// week to 495, so today's daily budget is open but the week is not.
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	fx.seedEarned(fx.player.ID, 300, monday)
	fx.seedEarned(fx.player.ID, 195, tuesday)

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 10, fx.now)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestAuthorizeEarnWeekStartsOnMonday(t *testing.T) {
	fx := newFixture(t)
	// Sunday June 1 belongs to the previous week and must not count.
	sunday := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	fx.seedEarned(fx.player.ID, 495, sunday)

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 100, fx.now)
	assert.NoError(t, err)
}

func TestAuthorizeEarnIgnoresSpentEntries(t *testing.T) {
	fx := newFixture(t)
	spent := &models.LedgerEntry{
		PlayerID:  fx.player.ID,
		Kind:      models.EntrySpent,
		Amount:    95,
		Reason:    "wheel spin",
		CreatedAt: fx.now.Add(-time.Hour),
	}
	require.NoError(t, fx.ledgers.Create(context.Background(), spent))

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 100, fx.now)
	assert.NoError(t, err)
}

func TestAuthorizeEarnCountsBonusTowardCaps(t *testing.T) {
	fx := newFixture(t)
	bonus := &models.LedgerEntry{
		PlayerID:  fx.player.ID,
		Kind:      models.EntryBonus,
		Amount:    95,
		Reason:    "signup bonus",
		CreatedAt: fx.now.Add(-time.Hour),
	}
	require.NoError(t, fx.ledgers.Create(context.Background(), bonus))

	err := fx.limits.AuthorizeEarn(context.Background(), fx.player.ID, 10, fx.now)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestAuthorizeSpendDailyCap(t *testing.T) {
	fx := newFixture(t)
	fx.seedEarned(fx.player.ID, 995, fx.now.Add(-30*24*time.Hour))
	fx.seedSpent(fx.player.ID, 990, fx.now.Add(-time.Hour))

	assert.NoError(t, fx.limits.AuthorizeSpend(context.Background(), fx.player.ID, 10, fx.now))

	err := fx.limits.AuthorizeSpend(context.Background(), fx.player.ID, 20, fx.now)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestAuthorizeSpendIgnoresEarlierDays(t *testing.T) {
	fx := newFixture(t)
	fx.seedEarned(fx.player.ID, 2000, fx.now.Add(-40*24*time.Hour))
	fx.seedSpent(fx.player.ID, 990, fx.now.Add(-26*time.Hour))

	assert.NoError(t, fx.limits.AuthorizeSpend(context.Background(), fx.player.ID, 1000, fx.now))
}

func TestZeroCapsDisableLimits(t *testing.T) {
	fx := newFixture(t)
	cfg := &config.Config{}
	cfg.Rewards = config.RewardsConfig{Timezone: "UTC"}
	limits := NewCreditLimiter(fx.ledgers, cfg)
	fx.seedEarned(fx.player.ID, 1_000_000, fx.now.Add(-time.Hour))

	assert.NoError(t, limits.AuthorizeEarn(context.Background(), fx.player.ID, 1_000_000, fx.now))
	assert.NoError(t, limits.AuthorizeSpend(context.Background(), fx.player.ID, 1_000_000, fx.now))
}

func TestDayAndWeekBoundaries(t *testing.T) {
	fx := newFixture(t)

	day := fx.limits.DayStart(fx.now)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), day)

	week := fx.limits.WeekStart(fx.now)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), week)

	// A Monday is its own week start, a Sunday belongs to the week
	// begun six days earlier.
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), fx.limits.WeekStart(monday))
	sunday := time.Date(2025, 6, 8, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), fx.limits.WeekStart(sunday))
}
