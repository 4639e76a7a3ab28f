package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSpinWinsAndIssuesPrize(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 0.1, 5)
	dessert := fx.seedPrize(fx.campaign.ID, "Free Dessert", 0.2, 3)
	fx.spinSvc.roll = fixedRoll(0.05)

	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeWin, result.Outcome)
	assert.False(t, result.Replayed)
	assert.Equal(t, int64(80), result.NewBalance)
	require.NotNil(t, result.Prize)
	assert.Equal(t, "Free Coffee", result.Prize.PrizeName)
	assert.Equal(t, models.PrizeStatusIssued, result.Prize.Status)
	assert.Len(t, result.Prize.Code, 10)
	assert.Equal(t, fx.now.AddDate(0, 0, 7), result.Prize.ExpiresAt)

	record, err := fx.spins.FindByID(context.Background(), result.SpinID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, record.Outcome)
	assert.Equal(t, coffee.ID, record.PrizeID)
	assert.Equal(t, result.Prize.ID, record.IssuedPrizeID)
	assert.InDelta(t, 0.05, record.Roll, 1e-12)
	assert.Equal(t, int64(20), record.Cost)

	assert.Equal(t, int64(4), fx.prizeRemaining(coffee.ID))
	assert.Equal(t, int64(3), fx.prizeRemaining(dessert.ID))

	entries := fx.ledgerEntries(fx.player.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntrySpent, entries[0].Kind)
	assert.Equal(t, int64(20), entries[0].Amount)
	assert.Equal(t, result.SpinID, entries[0].RefID)

	stored, err := fx.issued.FindByCode(context.Background(), result.Prize.Code)
	require.NoError(t, err)
	assert.Equal(t, result.Prize.ID, stored.ID)
}

func TestSpinResolvesNoWin(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 0.1, 5)
	fx.spinSvc.roll = fixedRoll(0.95)

	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeNoWin, result.Outcome)
	assert.Nil(t, result.Prize)
	assert.Equal(t, int64(80), result.NewBalance)

	// The spin still costs credits but touches no stock.
	assert.Equal(t, int64(5), fx.prizeRemaining(coffee.ID))
	prizes, err := fx.issued.FindByPlayer(context.Background(), fx.player.ID)
	require.NoError(t, err)
	assert.Empty(t, prizes)
	assert.Len(t, fx.ledgerEntries(fx.player.ID), 1)
}

func TestSpinExhaustedPrizeFallsOutOfWheel(t *testing.T) {
	fx := newFixture(t)
	fx.seedPrize(fx.campaign.ID, "Free Coffee", 0.5, 0)
	fx.spinSvc.roll = fixedRoll(0.25)

	// The roll lands inside the exhausted prize's nominal band, which
	// now belongs to no-win rather than another prize.
	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNoWin, result.Outcome)
}

func TestSpinDefaultExpiryAppliesWhenCampaignHasNone(t *testing.T) {
	fx := newFixture(t)
	campaign := &models.Campaign{
		LocationID: fx.location.ID,
		Name:       "Legacy Wheel",
		SpinCost:   20,
		StartDate:  fx.now.Add(-time.Hour),
		EndDate:    fx.now.Add(time.Hour),
		Active:     true,
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), campaign))
	fx.seedPrize(campaign.ID, "Sticker Pack", 1.0, 10)
	fx.spinSvc.expiryDays = 14
	fx.spinSvc.roll = fixedRoll(0.5)

	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, campaign.ID, "")
	require.NoError(t, err)
	require.NotNil(t, result.Prize)
	assert.Equal(t, fx.now.AddDate(0, 0, 14), result.Prize.ExpiresAt)
}

func TestSpinDeniedForInactivePlayer(t *testing.T) {
	fx := newFixture(t)
	inactive := &models.Player{ExternalRef: "ref-x", DisplayName: "X", Credits: 100}
	require.NoError(t, fx.players.Create(context.Background(), inactive))

	_, err := fx.spinSvc.Spin(context.Background(), inactive.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestSpinDeniedOutsideCampaignWindow(t *testing.T) {
	fx := newFixture(t)
	ended := &models.Campaign{
		LocationID: fx.location.ID,
		Name:       "Spring Wheel",
		SpinCost:   20,
		StartDate:  fx.now.Add(-48 * time.Hour),
		EndDate:    fx.now.Add(-24 * time.Hour),
		Active:     true,
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), ended))

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, ended.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestSpinDeniedForDeactivatedCampaign(t *testing.T) {
	fx := newFixture(t)
	paused := &models.Campaign{
		LocationID: fx.location.ID,
		Name:       "Paused Wheel",
		SpinCost:   20,
		StartDate:  fx.now.Add(-time.Hour),
		EndDate:    fx.now.Add(time.Hour),
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), paused))

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, paused.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestSpinUnknownCampaign(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, primitive.NewObjectID(), "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeNotFound))
}

func TestSpinDeniedByDailySpinCap(t *testing.T) {
	fx := newFixture(t)
	capped := &models.Campaign{
		LocationID:   fx.location.ID,
		Name:         "Capped Wheel",
		SpinCost:     20,
		DailySpinCap: 3,
		StartDate:    fx.now.Add(-time.Hour),
		EndDate:      fx.now.Add(time.Hour),
		Active:       true,
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), capped))
	for i := 0; i < 3; i++ {
		fx.seedSpinRecord(fx.player.ID, capped.ID, fx.now.Add(-time.Duration(i+1)*time.Hour))
	}

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, capped.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestSpinCapIgnoresYesterdaysSpins(t *testing.T) {
	fx := newFixture(t)
	capped := &models.Campaign{
		LocationID:   fx.location.ID,
		Name:         "Capped Wheel",
		SpinCost:     20,
		DailySpinCap: 3,
		StartDate:    fx.now.Add(-48 * time.Hour),
		EndDate:      fx.now.Add(time.Hour),
		Active:       true,
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), capped))
	for i := 0; i < 3; i++ {
		fx.seedSpinRecord(fx.player.ID, capped.ID, fx.now.Add(-26*time.Hour))
	}
	fx.spinSvc.roll = fixedRoll(0.99)

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, capped.ID, "")
	assert.NoError(t, err)
}

func TestSpinDeniedBySpendCap(t *testing.T) {
	fx := newFixture(t)
	fx.seedEarned(fx.player.ID, 990, fx.now.Add(-40*24*time.Hour))
	fx.seedSpent(fx.player.ID, 990, fx.now.Add(-time.Hour))

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))
}

func TestSpinDeniedOnInsufficientCredits(t *testing.T) {
	fx := newFixture(t)
	broke := fx.seedPlayer("Cleo", 10)
	fx.spinSvc.roll = fixedRoll(0.99)

	_, err := fx.spinSvc.Spin(context.Background(), broke.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))

	assert.Equal(t, int64(10), fx.balance(broke.ID))
	assert.Empty(t, fx.ledgerEntries(broke.ID))
}

func TestSpinIdempotencyKeyReplaysCommittedResult(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 0.1, 5)
	fx.spinSvc.roll = fixedRoll(0.05)

	first, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "key-1")
	require.NoError(t, err)
	require.Equal(t, models.OutcomeWin, first.Outcome)

	second, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "key-1")
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.SpinID, second.SpinID)
	assert.Equal(t, models.OutcomeWin, second.Outcome)
	require.NotNil(t, second.Prize)
	assert.Equal(t, first.Prize.Code, second.Prize.Code)

	// Exactly one debit and one stock unit moved.
	assert.Equal(t, int64(80), second.NewBalance)
	assert.Equal(t, int64(4), fx.prizeRemaining(coffee.ID))
	assert.Len(t, fx.ledgerEntries(fx.player.ID), 1)
}

func TestSpinSameKeyDifferentPlayersAreIndependent(t *testing.T) {
	fx := newFixture(t)
	other := fx.seedPlayer("Dana", 100)
	fx.spinSvc.roll = fixedRoll(0.99)

	first, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "shared-key")
	require.NoError(t, err)
	second, err := fx.spinSvc.Spin(context.Background(), other.ID, fx.campaign.ID, "shared-key")
	require.NoError(t, err)

	assert.False(t, second.Replayed)
	assert.NotEqual(t, first.SpinID, second.SpinID)
	assert.Equal(t, int64(80), fx.balance(other.ID))
}

func TestSpinDuplicateKeyRaceReplaysInsideTransaction(t *testing.T) {
	fx := newFixture(t)
	fx.spinSvc.roll = fixedRoll(0.99)

	// A rival request with the same key commits between this request's
	// idempotency precheck and its transaction.
	rival := &models.SpinRecord{
		ID:             primitive.NewObjectID(),
		PlayerID:       fx.player.ID,
		CampaignID:     fx.campaign.ID,
		LocationID:     fx.location.ID,
		IdempotencyKey: "key-2",
		Cost:           20,
		Roll:           0.7,
		Outcome:        models.OutcomeNoWin,
		CreatedAt:      fx.now,
	}
	fx.spinSvc.tx = &hookTx{
		inner: fx.store,
		before: func(call int) {
			require.NoError(t, fx.players.DebitCredits(context.Background(), fx.player.ID, 20))
			require.NoError(t, fx.spins.Create(context.Background(), rival))
		},
	}

	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "key-2")
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Equal(t, rival.ID, result.SpinID)
	// Only the rival's debit landed.
	assert.Equal(t, int64(80), result.NewBalance)
	assert.Equal(t, int64(80), fx.balance(fx.player.ID))
}

func TestSpinRetriesAfterLosingStockRace(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 1.0, 1)
	fx.spinSvc.roll = fixedRoll(0.5)

	// The last unit disappears between the prize load and the commit.
	hook := &hookTx{
		inner: fx.store,
		before: func(call int) {
			if call == 1 {
				require.NoError(t, fx.prizes.DecrementStock(context.Background(), coffee.ID))
			}
		},
	}
	fx.spinSvc.tx = hook

	result, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.NoError(t, err)

	// The retry re-rolled against the refreshed table, where the
	// exhausted prize no longer appears.
	assert.Equal(t, 2, hook.calls)
	assert.Equal(t, models.OutcomeNoWin, result.Outcome)
	assert.Equal(t, int64(80), result.NewBalance)
	// The losing attempt's debit was rolled back.
	assert.Len(t, fx.ledgerEntries(fx.player.ID), 1)
	assert.Equal(t, int64(0), fx.prizeRemaining(coffee.ID))
}

func TestSpinGivesUpAfterAttemptBudget(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 1.0, 1)
	fx.spinSvc.roll = fixedRoll(0.5)
	fx.spinSvc.maxAttempts = 1
	fx.spinSvc.tx = &hookTx{
		inner: fx.store,
		before: func(call int) {
			require.NoError(t, fx.prizes.DecrementStock(context.Background(), coffee.ID))
		},
	}

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeConflict))

	// Nothing from the failed attempt persisted.
	assert.Equal(t, int64(100), fx.balance(fx.player.ID))
	assert.Empty(t, fx.ledgerEntries(fx.player.ID))
	spins, err := fx.spins.FindByPlayer(context.Background(), fx.player.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, spins)
}

func TestSpinRollsBackAllWritesOnFailure(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 1.0, 5)
	fx.spinSvc.roll = fixedRoll(0.5)
	fx.spinSvc.maxAttempts = 1
	fx.spinSvc.tx = &hookTx{
		inner:    fx.store,
		forceErr: func(call int) error { return errors.New("connection reset") },
	}

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeStoreUnavailable))

	// Debit, ledger entry, stock decrement, issuance and spin record
	// move together or not at all.
	assert.Equal(t, int64(100), fx.balance(fx.player.ID))
	assert.Empty(t, fx.ledgerEntries(fx.player.ID))
	assert.Equal(t, int64(5), fx.prizeRemaining(coffee.ID))
	prizes, err := fx.issued.FindByPlayer(context.Background(), fx.player.ID)
	require.NoError(t, err)
	assert.Empty(t, prizes)
	spins, err := fx.spins.FindByPlayer(context.Background(), fx.player.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, spins)
}

func TestConcurrentSpinsNeverOversellStock(t *testing.T) {
	fx := newFixture(t)
	coffee := fx.seedPrize(fx.campaign.ID, "Free Coffee", 1.0, 3)
	require.NoError(t, fx.players.AdjustCredits(context.Background(), fx.player.ID, 200))
	fx.spinSvc.roll = fixedRoll(0.5)

	const spins = 10
	results := make([]*SpinResult, spins)
	errs := make([]error, spins)
	var wg sync.WaitGroup
	for i := 0; i < spins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < spins; i++ {
		require.NoError(t, errs[i])
		if results[i].Outcome == models.OutcomeWin {
			wins++
		}
	}

	// Exactly as many wins as there were units of stock.
	assert.Equal(t, 3, wins)
	assert.Equal(t, int64(0), fx.prizeRemaining(coffee.ID))
	issued, err := fx.issued.FindByPlayer(context.Background(), fx.player.ID)
	require.NoError(t, err)
	assert.Len(t, issued, 3)

	// Every spin cost exactly once.
	assert.Equal(t, int64(300-spins*20), fx.balance(fx.player.ID))
	assert.Len(t, fx.ledgerEntries(fx.player.ID), spins)
}

func TestSpinDeniedWhenRivalFillsSpendCapMidFlight(t *testing.T) {
	fx := newFixture(t)
	fx.spinSvc.roll = fixedRoll(0.99)

	cfg := *fx.cfg
	cfg.Rewards.DailySpendCap = 30
	limits := NewCreditLimiter(fx.ledgers, &cfg)
	fx.spinSvc.limits = limits

	rival := NewSpinService(fx.players, fx.locations, fx.campaigns, fx.prizes, fx.spins, fx.ledgers, fx.issued, limits, fx.store, &cfg)
	rival.now = fx.clock
	rival.roll = fixedRoll(0.99)

	// The rival's spin commits after this request's eligibility pass but
	// before its transaction opens, leaving only 10 of the 30-credit
	// daily window.
	fx.spinSvc.tx = &hookTx{
		inner: fx.store,
		before: func(call int) {
			if call == 1 {
				_, err := rival.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
				require.NoError(t, err)
			}
		},
	}

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, fx.campaign.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))

	// Only the rival's debit landed.
	assert.Equal(t, int64(80), fx.balance(fx.player.ID))
	assert.Len(t, fx.ledgerEntries(fx.player.ID), 1)
}

func TestSpinDeniedWhenRivalTakesLastDailySpin(t *testing.T) {
	fx := newFixture(t)
	capped := &models.Campaign{
		LocationID:   fx.location.ID,
		Name:         "Capped Wheel",
		SpinCost:     20,
		DailySpinCap: 1,
		StartDate:    fx.now.Add(-time.Hour),
		EndDate:      fx.now.Add(time.Hour),
		Active:       true,
	}
	require.NoError(t, fx.campaigns.Create(context.Background(), capped))
	fx.spinSvc.roll = fixedRoll(0.99)

	rival := NewSpinService(fx.players, fx.locations, fx.campaigns, fx.prizes, fx.spins, fx.ledgers, fx.issued, fx.limits, fx.store, fx.cfg)
	rival.now = fx.clock
	rival.roll = fixedRoll(0.99)

	fx.spinSvc.tx = &hookTx{
		inner: fx.store,
		before: func(call int) {
			if call == 1 {
				_, err := rival.Spin(context.Background(), fx.player.ID, capped.ID, "")
				require.NoError(t, err)
			}
		},
	}

	_, err := fx.spinSvc.Spin(context.Background(), fx.player.ID, capped.ID, "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodePolicyDenied))

	count, err := fx.spins.CountSince(context.Background(), fx.player.ID, capped.ID, fx.now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(80), fx.balance(fx.player.ID))
}
