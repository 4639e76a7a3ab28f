package services

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/metrics"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/odds"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"github.com/spinpointhq/spinpoint-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SpinServiceImpl implements SpinService
var _ SpinService = (*SpinServiceImpl)(nil)

// errSpinReplayed aborts the transaction when another request with the
// same idempotency key committed first.
var errSpinReplayed = errors.New("spin replayed")

// SpinServiceImpl orchestrates the paid wheel spin: debit, draw, stock
// decrement and record issuance commit as one transaction.
type SpinServiceImpl struct {
	playerRepo   repositories.PlayerRepository
	locationRepo repositories.LocationRepository
	campaignRepo repositories.CampaignRepository
	prizeRepo    repositories.PrizeRepository
	spinRepo     repositories.SpinRepository
	ledgerRepo   repositories.LedgerRepository
	issuedRepo   repositories.IssuedPrizeRepository
	limits       *CreditLimiter
	tx           repositories.TxRunner
	roll         odds.RollFunc
	maxAttempts  int
	codeLength   int
	expiryDays   int
	now          func() time.Time
}

// NewSpinService creates a new SpinServiceImpl
func NewSpinService(
	playerRepo repositories.PlayerRepository,
	locationRepo repositories.LocationRepository,
	campaignRepo repositories.CampaignRepository,
	prizeRepo repositories.PrizeRepository,
	spinRepo repositories.SpinRepository,
	ledgerRepo repositories.LedgerRepository,
	issuedRepo repositories.IssuedPrizeRepository,
	limits *CreditLimiter,
	tx repositories.TxRunner,
	cfg *config.Config,
) *SpinServiceImpl {
	return &SpinServiceImpl{
		playerRepo:   playerRepo,
		locationRepo: locationRepo,
		campaignRepo: campaignRepo,
		prizeRepo:    prizeRepo,
		spinRepo:     spinRepo,
		ledgerRepo:   ledgerRepo,
		issuedRepo:   issuedRepo,
		limits:       limits,
		tx:           tx,
		roll:         odds.CryptoRoll,
		maxAttempts:  cfg.Spin.MaxAttempts,
		codeLength:   cfg.Spin.RedemptionCodeLength,
		expiryDays:   cfg.Spin.DefaultPrizeExpiryDays,
		now:          time.Now,
	}
}

// Spin validates eligibility, then commits the spin atomically. A lost
// stock race aborts the transaction and the spin is retried with fresh
// state, re-rolling against the remaining prizes, up to the attempt
// budget.
func (s *SpinServiceImpl) Spin(ctx context.Context, playerID, campaignID primitive.ObjectID, idempotencyKey string) (*SpinResult, error) {
	now := s.now()

	if idempotencyKey != "" {
		record, err := s.spinRepo.FindByIdempotencyKey(ctx, playerID, idempotencyKey)
		if err == nil {
			return s.resultFromRecord(ctx, record)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, types.NewStoreUnavailable("failed to check idempotency key", err)
		}
	}

	player, campaign, err := s.validateEligibility(ctx, playerID, campaignID, now)
	if err != nil {
		metrics.ObserveSpin("denied")
		slog.Info("spin denied", "player", playerID.Hex(), "campaign", campaignID.Hex(), "error", err)
		return nil, err
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		result, err := s.attemptSpin(ctx, player, campaign, idempotencyKey, now)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errSpinReplayed) {
			record, findErr := s.spinRepo.FindByIdempotencyKey(ctx, playerID, idempotencyKey)
			if findErr != nil {
				return nil, types.NewStoreUnavailable("failed to load replayed spin", findErr)
			}
			return s.resultFromRecord(ctx, record)
		}
		if types.IsConflict(err) {
			metrics.ObserveSpin("conflict")
			slog.Warn("spin attempt lost a race, retrying",
				"player", playerID.Hex(), "campaign", campaignID.Hex(), "attempt", attempt+1, "error", err)
			continue
		}
		if types.IsCode(err, types.ErrCodePolicyDenied) {
			metrics.ObserveSpin("denied")
			slog.Info("spin denied", "player", playerID.Hex(), "campaign", campaignID.Hex(), "error", err)
		}
		return nil, err
	}

	return nil, types.NewConflict("spin could not be committed after %d attempts", s.maxAttempts)
}

// validateEligibility runs every admission rule that does not require
// the transaction: account and campaign status, the campaign window,
// the daily spin cap, the spend cap and a balance precheck.
func (s *SpinServiceImpl) validateEligibility(ctx context.Context, playerID, campaignID primitive.ObjectID, now time.Time) (*models.Player, *models.Campaign, error) {
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, types.NewNotFound("player %s not found", playerID.Hex())
		}
		return nil, nil, types.NewStoreUnavailable("failed to load player", err)
	}
	if !player.Active {
		return nil, nil, types.NewPolicyDenied("player account is inactive")
	}

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, types.NewNotFound("campaign %s not found", campaignID.Hex())
		}
		return nil, nil, types.NewStoreUnavailable("failed to load campaign", err)
	}
	if !campaign.Runs(now) {
		return nil, nil, types.NewPolicyDenied("campaign %s is not currently running", campaign.Name)
	}

	location, err := s.locationRepo.FindByID(ctx, campaign.LocationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, types.NewNotFound("location %s not found", campaign.LocationID.Hex())
		}
		return nil, nil, types.NewStoreUnavailable("failed to load location", err)
	}
	if !location.Active {
		return nil, nil, types.NewPolicyDenied("location %s is inactive", location.Name)
	}

	if err := s.authorizeSpendWindows(ctx, playerID, campaign, now); err != nil {
		return nil, nil, err
	}

	// Precheck only; the transactional debit is the real guard.
	if player.Credits < campaign.SpinCost {
		return nil, nil, types.NewPolicyDenied("insufficient credits: have %d, spin costs %d", player.Credits, campaign.SpinCost)
	}

	return player, campaign, nil
}

// authorizeSpendWindows enforces the campaign's daily spin cap and the
// rolling spend cap against the data visible to ctx. It runs once
// before the transaction for fail-fast denial and again inside it,
// where the snapshot read makes the window sum causally consistent
// with the debit being permitted.
func (s *SpinServiceImpl) authorizeSpendWindows(ctx context.Context, playerID primitive.ObjectID, campaign *models.Campaign, now time.Time) error {
	if campaign.DailySpinCap > 0 {
		count, err := s.spinRepo.CountSince(ctx, playerID, campaign.ID, s.limits.DayStart(now))
		if err != nil {
			return types.NewStoreUnavailable("failed to count today's spins", err)
		}
		if count >= int64(campaign.DailySpinCap) {
			return types.NewPolicyDenied("daily spin limit of %d reached for %s", campaign.DailySpinCap, campaign.Name)
		}
	}
	return s.limits.AuthorizeSpend(ctx, playerID, campaign.SpinCost, now)
}

// attemptSpin makes one transactional attempt at committing the spin.
func (s *SpinServiceImpl) attemptSpin(ctx context.Context, player *models.Player, campaign *models.Campaign, idempotencyKey string, now time.Time) (*SpinResult, error) {
	prizes, err := s.prizeRepo.FindByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to load prize table", err)
	}
	if err := odds.Validate(prizes); err != nil {
		return nil, types.NewStoreUnavailable("campaign prize table is invalid", err)
	}
	odds.SortByID(prizes)

	roll, err := s.roll()
	if err != nil {
		return nil, types.NewStoreUnavailable("random draw failed", err)
	}
	selected, won := odds.Select(prizes, roll)

	record := &models.SpinRecord{
		ID:             primitive.NewObjectID(),
		PlayerID:       player.ID,
		CampaignID:     campaign.ID,
		LocationID:     campaign.LocationID,
		IdempotencyKey: idempotencyKey,
		Cost:           campaign.SpinCost,
		Roll:           roll,
		Outcome:        models.OutcomeNoWin,
		CreatedAt:      now,
	}

	var issued *models.IssuedPrize
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// A spin committed since the pre-transaction pass may have
		// filled the window; re-check on the transaction's snapshot.
		if err := s.authorizeSpendWindows(txCtx, player.ID, campaign, now); err != nil {
			return err
		}

		if err := s.playerRepo.DebitCredits(txCtx, player.ID, campaign.SpinCost); err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return types.NewPolicyDenied("insufficient credits for spin")
			}
			return types.NewStoreUnavailable("failed to debit credits", err)
		}

		entry := &models.LedgerEntry{
			PlayerID:  player.ID,
			Kind:      models.EntrySpent,
			Amount:    campaign.SpinCost,
			Reason:    "wheel spin",
			RefType:   "spin",
			RefID:     record.ID,
			CreatedAt: now,
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return types.NewStoreUnavailable("failed to append ledger entry", err)
		}

		if won {
			if err := s.prizeRepo.DecrementStock(txCtx, selected.ID); err != nil {
				if errors.Is(err, repositories.ErrConditionFailed) {
					return types.NewConflict("prize %s ran out of stock during commit", selected.Name)
				}
				return types.NewStoreUnavailable("failed to decrement prize stock", err)
			}

			code, err := utils.GenerateRedemptionCode(s.codeLength)
			if err != nil {
				return types.NewStoreUnavailable("failed to generate redemption code", err)
			}
			expiryDays := campaign.PrizeExpiryDays
			if expiryDays <= 0 {
				expiryDays = s.expiryDays
			}
			issued = &models.IssuedPrize{
				PlayerID:   player.ID,
				PrizeID:    selected.ID,
				CampaignID: campaign.ID,
				LocationID: campaign.LocationID,
				SpinID:     record.ID,
				PrizeName:  selected.Name,
				Code:       code,
				Status:     models.PrizeStatusIssued,
				IssuedAt:   now,
				ExpiresAt:  now.AddDate(0, 0, expiryDays),
			}
			if err := s.issuedRepo.Create(txCtx, issued); err != nil {
				if errors.Is(err, repositories.ErrDuplicateKey) {
					return types.NewConflict("redemption code collision")
				}
				return types.NewStoreUnavailable("failed to issue prize", err)
			}
			record.Outcome = models.OutcomeWin
			record.PrizeID = selected.ID
			record.IssuedPrizeID = issued.ID
		}

		if err := s.spinRepo.Create(txCtx, record); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return errSpinReplayed
			}
			return types.NewStoreUnavailable("failed to record spin", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errSpinReplayed) {
			return nil, err
		}
		var re *types.RewardError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, types.NewStoreUnavailable("spin transaction failed", err)
	}

	balance, err := s.currentBalance(ctx, player.ID)
	if err != nil {
		return nil, err
	}

	if won {
		metrics.ObserveSpin("win")
		slog.Info("spin won",
			"player", player.ID.Hex(),
			"campaign", campaign.ID.Hex(),
			"spin", record.ID.Hex(),
			"prize", selected.Name,
			"code", issued.Code)
	} else {
		metrics.ObserveSpin("no_win")
		slog.Info("spin resolved without a win",
			"player", player.ID.Hex(),
			"campaign", campaign.ID.Hex(),
			"spin", record.ID.Hex())
	}

	return &SpinResult{
		SpinID:     record.ID,
		Outcome:    record.Outcome,
		Prize:      issued,
		NewBalance: balance,
	}, nil
}

// resultFromRecord rebuilds the response for a replayed idempotent spin.
func (s *SpinServiceImpl) resultFromRecord(ctx context.Context, record *models.SpinRecord) (*SpinResult, error) {
	var issued *models.IssuedPrize
	if !record.IssuedPrizeID.IsZero() {
		prize, err := s.issuedRepo.FindByID(ctx, record.IssuedPrizeID)
		if err == nil {
			issued = prize
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, types.NewStoreUnavailable("failed to load issued prize", err)
		}
		// A cleaned-up expired prize leaves the spin record intact.
	}

	balance, err := s.currentBalance(ctx, record.PlayerID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveSpin("replayed")
	slog.Info("spin replayed", "player", record.PlayerID.Hex(), "spin", record.ID.Hex())

	return &SpinResult{
		SpinID:     record.ID,
		Outcome:    record.Outcome,
		Prize:      issued,
		NewBalance: balance,
		Replayed:   true,
	}, nil
}

func (s *SpinServiceImpl) currentBalance(ctx context.Context, playerID primitive.ObjectID) (int64, error) {
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return 0, types.NewStoreUnavailable("failed to reload balance", err)
	}
	return player.Credits, nil
}
