package services

import (
	"context"
	"testing"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/ratelimit"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The default venue sits at these coordinates; tests derive nearby and
// faraway positions from them.
const (
	venueLat = 40.7128
	venueLng = -74.0060
)

// fixture wires the full service stack onto the in-memory store with a
// controllable clock. The base instant is a Wednesday so weekly-cap
// tests can step backwards past Monday.
type fixture struct {
	t     *testing.T
	store *memory.Store
	now   time.Time

	players   *memory.PlayerRepository
	locations *memory.LocationRepository
	campaigns *memory.CampaignRepository
	prizes    *memory.PrizeRepository
	checkins  *memory.CheckInRepository
	ledgers   *memory.LedgerRepository
	spins     *memory.SpinRepository
	issued    *memory.IssuedPrizeRepository
	staff     *memory.StaffRepository

	cfg           *config.Config
	gate          *AntiFraudGate
	limits        *CreditLimiter
	checkinSvc    *CheckInServiceImpl
	spinSvc       *SpinServiceImpl
	redemptionSvc *RedemptionServiceImpl
	playerSvc     *PlayerServiceImpl

	player   *models.Player
	location *models.Location
	campaign *models.Campaign
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()

	cfg := &config.Config{}
	cfg.Rewards = config.RewardsConfig{
		CheckInAward:  10,
		DailyEarnCap:  100,
		WeeklyEarnCap: 500,
		DailySpendCap: 1000,
		Timezone:      "UTC",
	}
	cfg.Fraud = config.FraudConfig{
		ProximityMeters:  100,
		Cooldown:         30 * time.Minute,
		VelocityAttempts: 5,
		VelocityWindow:   10 * time.Minute,
	}
	cfg.Spin = config.SpinConfig{
		MaxAttempts:            3,
		RedemptionCodeLength:   10,
		DefaultPrizeExpiryDays: 7,
	}

	fx := &fixture{
		t:         t,
		store:     store,
		now:       time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC),
		players:   memory.NewPlayerRepository(store),
		locations: memory.NewLocationRepository(store),
		campaigns: memory.NewCampaignRepository(store),
		prizes:    memory.NewPrizeRepository(store),
		checkins:  memory.NewCheckInRepository(store),
		ledgers:   memory.NewLedgerRepository(store),
		spins:     memory.NewSpinRepository(store),
		issued:    memory.NewIssuedPrizeRepository(store),
		staff:     memory.NewStaffRepository(store),
		cfg:       cfg,
	}

	limiter := ratelimit.New(cfg.Fraud.VelocityAttempts, cfg.Fraud.VelocityWindow)
	fx.gate = NewAntiFraudGate(fx.checkins, limiter, cfg)
	fx.limits = NewCreditLimiter(fx.ledgers, cfg)

	fx.checkinSvc = NewCheckInService(fx.players, fx.locations, fx.checkins, fx.ledgers, fx.gate, fx.limits, store, cfg)
	fx.checkinSvc.now = fx.clock

	fx.spinSvc = NewSpinService(fx.players, fx.locations, fx.campaigns, fx.prizes, fx.spins, fx.ledgers, fx.issued, fx.limits, store, cfg)
	fx.spinSvc.now = fx.clock

	fx.redemptionSvc = NewRedemptionService(fx.issued, fx.staff, fx.players)
	fx.redemptionSvc.now = fx.clock

	fx.playerSvc = NewPlayerService(fx.players, fx.ledgers, fx.spins, fx.issued)

	fx.player = fx.seedPlayer("Ana", 100)
	fx.location = fx.seedLocation("Downtown Arcade", venueLat, venueLng)
	fx.campaign = fx.seedCampaign(fx.location.ID, 20)

	return fx
}

func (fx *fixture) clock() time.Time {
	return fx.now
}

func (fx *fixture) advance(d time.Duration) {
	fx.now = fx.now.Add(d)
}

func (fx *fixture) seedPlayer(name string, credits int64) *models.Player {
	player := &models.Player{
		ExternalRef: "ref-" + name,
		DisplayName: name,
		Credits:     credits,
		Active:      true,
	}
	require.NoError(fx.t, fx.players.Create(context.Background(), player))
	return player
}

func (fx *fixture) seedLocation(name string, lat, lng float64) *models.Location {
	location := &models.Location{
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Active:    true,
	}
	require.NoError(fx.t, fx.locations.Create(context.Background(), location))
	return location
}

func (fx *fixture) seedCampaign(locationID primitive.ObjectID, spinCost int64) *models.Campaign {
	campaign := &models.Campaign{
		LocationID:      locationID,
		Name:            "Summer Wheel",
		SpinCost:        spinCost,
		PrizeExpiryDays: 7,
		StartDate:       fx.now.Add(-24 * time.Hour),
		EndDate:         fx.now.Add(30 * 24 * time.Hour),
		Active:          true,
	}
	require.NoError(fx.t, fx.campaigns.Create(context.Background(), campaign))
	return campaign
}

func (fx *fixture) seedPrize(campaignID primitive.ObjectID, name string, probability float64, stock int64) *models.Prize {
	prize := &models.Prize{
		CampaignID:   campaignID,
		Name:         name,
		InitialStock: stock,
		Remaining:    stock,
		Probability:  probability,
	}
	require.NoError(fx.t, fx.prizes.Create(context.Background(), prize))
	return prize
}

func (fx *fixture) seedStaff(name string, role models.StaffRole, locationID primitive.ObjectID) *models.StaffUser {
	staff := &models.StaffUser{
		Email:      name + "@spinpoint.test",
		Name:       name,
		Role:       role,
		LocationID: locationID,
		Active:     true,
	}
	require.NoError(fx.t, fx.staff.Create(context.Background(), staff))
	return staff
}

// seedEarned backfills an EARNED ledger entry and keeps the cached
// balance consistent with it.
func (fx *fixture) seedEarned(playerID primitive.ObjectID, amount int64, at time.Time) {
	entry := &models.LedgerEntry{
		PlayerID:  playerID,
		Kind:      models.EntryEarned,
		Amount:    amount,
		Reason:    "venue check-in",
		CreatedAt: at,
	}
	require.NoError(fx.t, fx.ledgers.Create(context.Background(), entry))
	require.NoError(fx.t, fx.players.AdjustCredits(context.Background(), playerID, amount))
}

// seedSpent backfills a SPENT ledger entry and keeps the cached balance
// consistent with it.
func (fx *fixture) seedSpent(playerID primitive.ObjectID, amount int64, at time.Time) {
	entry := &models.LedgerEntry{
		PlayerID:  playerID,
		Kind:      models.EntrySpent,
		Amount:    amount,
		Reason:    "wheel spin",
		CreatedAt: at,
	}
	require.NoError(fx.t, fx.ledgers.Create(context.Background(), entry))
	require.NoError(fx.t, fx.players.AdjustCredits(context.Background(), playerID, -amount))
}

func (fx *fixture) seedSpinRecord(playerID, campaignID primitive.ObjectID, at time.Time) {
	record := &models.SpinRecord{
		PlayerID:   playerID,
		CampaignID: campaignID,
		Cost:       20,
		Outcome:    models.OutcomeNoWin,
		CreatedAt:  at,
	}
	require.NoError(fx.t, fx.spins.Create(context.Background(), record))
}

func (fx *fixture) seedIssuedPrize(code string, status models.PrizeStatus, locationID primitive.ObjectID, expiresAt time.Time) *models.IssuedPrize {
	prize := &models.IssuedPrize{
		PlayerID:   fx.player.ID,
		PrizeID:    primitive.NewObjectID(),
		CampaignID: fx.campaign.ID,
		LocationID: locationID,
		SpinID:     primitive.NewObjectID(),
		PrizeName:  "Free Coffee",
		Code:       code,
		Status:     status,
		IssuedAt:   fx.now.Add(-time.Hour),
		ExpiresAt:  expiresAt,
	}
	if status == models.PrizeStatusRedeemed {
		at := fx.now.Add(-30 * time.Minute)
		prize.RedeemedAt = &at
	}
	require.NoError(fx.t, fx.issued.Create(context.Background(), prize))
	return prize
}

func (fx *fixture) balance(playerID primitive.ObjectID) int64 {
	player, err := fx.players.FindByID(context.Background(), playerID)
	require.NoError(fx.t, err)
	return player.Credits
}

func (fx *fixture) ledgerEntries(playerID primitive.ObjectID) []*models.LedgerEntry {
	entries, err := fx.ledgers.FindByPlayer(context.Background(), playerID, 1, 1000)
	require.NoError(fx.t, err)
	return entries
}

func (fx *fixture) prizeRemaining(id primitive.ObjectID) int64 {
	prize, err := fx.prizes.FindByID(context.Background(), id)
	require.NoError(fx.t, err)
	return prize.Remaining
}

// fixedRoll replaces the crypto draw with a deterministic value.
func fixedRoll(v float64) func() (float64, error) {
	return func() (float64, error) { return v, nil }
}

// hookTx wraps a TxRunner so tests can interfere with a transaction:
// before simulates a concurrent writer sneaking in ahead of the
// callback, forceErr makes an otherwise successful transaction abort.
type hookTx struct {
	inner    repositories.TxRunner
	calls    int
	before   func(call int)
	forceErr func(call int) error
}

func (h *hookTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	h.calls++
	call := h.calls
	if h.before != nil {
		h.before(call)
	}
	return h.inner.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := fn(txCtx); err != nil {
			return err
		}
		if h.forceErr != nil {
			return h.forceErr(call)
		}
		return nil
	})
}
