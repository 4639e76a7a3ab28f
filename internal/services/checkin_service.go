package services

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/metrics"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"github.com/spinpointhq/spinpoint-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CheckInServiceImpl implements CheckInService
var _ CheckInService = (*CheckInServiceImpl)(nil)

// errCheckInReplayed aborts the transaction when the dedupe hash
// already exists, signalling the caller to return the original session.
var errCheckInReplayed = errors.New("check-in replayed")

// CheckInServiceImpl handles venue check-ins and their credit awards
type CheckInServiceImpl struct {
	playerRepo   repositories.PlayerRepository
	locationRepo repositories.LocationRepository
	checkinRepo  repositories.CheckInRepository
	ledgerRepo   repositories.LedgerRepository
	gate         *AntiFraudGate
	limits       *CreditLimiter
	tx           repositories.TxRunner
	award        int64
	dedupeWindow time.Duration
	now          func() time.Time
}

// NewCheckInService creates a new CheckInServiceImpl
func NewCheckInService(
	playerRepo repositories.PlayerRepository,
	locationRepo repositories.LocationRepository,
	checkinRepo repositories.CheckInRepository,
	ledgerRepo repositories.LedgerRepository,
	gate *AntiFraudGate,
	limits *CreditLimiter,
	tx repositories.TxRunner,
	cfg *config.Config,
) *CheckInServiceImpl {
	return &CheckInServiceImpl{
		playerRepo:   playerRepo,
		locationRepo: locationRepo,
		checkinRepo:  checkinRepo,
		ledgerRepo:   ledgerRepo,
		gate:         gate,
		limits:       limits,
		tx:           tx,
		award:        cfg.Rewards.CheckInAward,
		dedupeWindow: cfg.Fraud.Cooldown,
		now:          time.Now,
	}
}

// CheckIn admits the player through the anti-fraud gate, then awards
// check-in credits atomically: session, ledger entry and balance move
// together or not at all.
func (s *CheckInServiceImpl) CheckIn(ctx context.Context, playerID, locationID primitive.ObjectID, lat, lng float64) (*CheckInResult, error) {
	now := s.now()

	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, types.NewNotFound("player %s not found", playerID.Hex())
		}
		return nil, types.NewStoreUnavailable("failed to load player", err)
	}

	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, types.NewNotFound("location %s not found", locationID.Hex())
		}
		return nil, types.NewStoreUnavailable("failed to load location", err)
	}

	distance, err := s.gate.Admit(ctx, player, location, lat, lng, now)
	if err != nil {
		metrics.ObserveCheckIn("denied")
		slog.Info("check-in denied", "player", playerID.Hex(), "location", locationID.Hex(), "error", err)
		return nil, err
	}

	if err := s.limits.AuthorizeEarn(ctx, playerID, s.award, now); err != nil {
		metrics.ObserveCheckIn("denied")
		slog.Info("check-in award denied by cap", "player", playerID.Hex(), "error", err)
		return nil, err
	}

	session := &models.CheckInSession{
		PlayerID:       playerID,
		LocationID:     locationID,
		Latitude:       lat,
		Longitude:      lng,
		DistanceMeters: distance,
		CreditsAwarded: s.award,
		DedupeHash:     utils.CheckInDedupeHash(playerID.Hex(), locationID.Hex(), now, s.dedupeWindow),
		CheckedInAt:    now,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkinRepo.Create(txCtx, session); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return errCheckInReplayed
			}
			return types.NewStoreUnavailable("failed to record check-in", err)
		}
		// An award committed since the pre-transaction pass may have
		// filled the earn window; re-check on the transaction's
		// snapshot before moving credits.
		if err := s.limits.AuthorizeEarn(txCtx, playerID, s.award, now); err != nil {
			return err
		}
		entry := &models.LedgerEntry{
			PlayerID:  playerID,
			Kind:      models.EntryEarned,
			Amount:    s.award,
			Reason:    "venue check-in",
			RefType:   "checkin",
			RefID:     session.ID,
			CreatedAt: now,
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return types.NewStoreUnavailable("failed to append ledger entry", err)
		}
		if err := s.playerRepo.AdjustCredits(txCtx, playerID, s.award); err != nil {
			return types.NewStoreUnavailable("failed to update balance", err)
		}
		return nil
	})

	if errors.Is(err, errCheckInReplayed) {
		return s.replayCheckIn(ctx, playerID, session.DedupeHash)
	}
	if err != nil {
		var re *types.RewardError
		if errors.As(err, &re) {
			if re.Code == types.ErrCodePolicyDenied {
				metrics.ObserveCheckIn("denied")
				slog.Info("check-in award denied by cap", "player", playerID.Hex(), "error", re)
			}
			return nil, re
		}
		return nil, types.NewStoreUnavailable("check-in transaction failed", err)
	}

	balance, err := s.currentBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveCheckIn("accepted")
	slog.Info("check-in accepted",
		"player", playerID.Hex(),
		"location", locationID.Hex(),
		"session", session.ID.Hex(),
		"awarded", s.award,
		"distanceMeters", distance)

	return &CheckInResult{
		SessionID:      session.ID,
		CreditsAwarded: s.award,
		NewBalance:     balance,
	}, nil
}

// replayCheckIn resolves a duplicate submission to the session that won
// the race, without a second award.
func (s *CheckInServiceImpl) replayCheckIn(ctx context.Context, playerID primitive.ObjectID, hash string) (*CheckInResult, error) {
	existing, err := s.checkinRepo.FindByDedupeHash(ctx, hash)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to load original check-in", err)
	}
	balance, err := s.currentBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveCheckIn("replayed")
	slog.Info("check-in replayed", "player", playerID.Hex(), "session", existing.ID.Hex())

	return &CheckInResult{
		SessionID:      existing.ID,
		CreditsAwarded: existing.CreditsAwarded,
		NewBalance:     balance,
		Replayed:       true,
	}, nil
}

func (s *CheckInServiceImpl) currentBalance(ctx context.Context, playerID primitive.ObjectID) (int64, error) {
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return 0, types.NewStoreUnavailable("failed to reload balance", err)
	}
	return player.Credits, nil
}
