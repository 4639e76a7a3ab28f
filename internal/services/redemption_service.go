package services

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/metrics"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RedemptionServiceImpl implements RedemptionService
var _ RedemptionService = (*RedemptionServiceImpl)(nil)

// RedemptionServiceImpl handles the issued prize lifecycle at the
// counter: staff look a voucher up, complete it exactly once, and a
// background sweep removes expired unredeemed vouchers.
type RedemptionServiceImpl struct {
	issuedRepo repositories.IssuedPrizeRepository
	staffRepo  repositories.StaffRepository
	playerRepo repositories.PlayerRepository
	now        func() time.Time
}

// NewRedemptionService creates a new RedemptionServiceImpl
func NewRedemptionService(
	issuedRepo repositories.IssuedPrizeRepository,
	staffRepo repositories.StaffRepository,
	playerRepo repositories.PlayerRepository,
) *RedemptionServiceImpl {
	return &RedemptionServiceImpl{
		issuedRepo: issuedRepo,
		staffRepo:  staffRepo,
		playerRepo: playerRepo,
		now:        time.Now,
	}
}

// Lookup shows the voucher to authorized staff without changing it.
func (s *RedemptionServiceImpl) Lookup(ctx context.Context, staffID primitive.ObjectID, code string) (*RedemptionView, error) {
	_, prize, err := s.authorize(ctx, staffID, code)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, prize), nil
}

// Complete marks the voucher redeemed. The conditional status update
// makes the transition single-shot even under concurrent completion.
func (s *RedemptionServiceImpl) Complete(ctx context.Context, staffID primitive.ObjectID, code string) (*RedemptionView, error) {
	staff, prize, err := s.authorize(ctx, staffID, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if prize.Status == models.PrizeStatusRedeemed {
		metrics.ObserveRedemption("already_redeemed")
		return nil, types.NewAlreadyRedeemed("prize %s was already redeemed", code)
	}
	if prize.Expired(now) {
		metrics.ObserveRedemption("expired")
		return nil, types.NewExpired("prize %s expired at %s", code, prize.ExpiresAt.Format(time.RFC3339))
	}

	if err := s.issuedRepo.MarkRedeemed(ctx, prize.ID, staff.ID, now); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			metrics.ObserveRedemption("already_redeemed")
			return nil, types.NewAlreadyRedeemed("prize %s was already redeemed", code)
		}
		return nil, types.NewStoreUnavailable("failed to mark prize redeemed", err)
	}

	updated, err := s.issuedRepo.FindByID(ctx, prize.ID)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to reload redeemed prize", err)
	}

	metrics.ObserveRedemption("completed")
	slog.Info("prize redeemed",
		"code", code,
		"prize", updated.PrizeName,
		"player", updated.PlayerID.Hex(),
		"staff", staff.ID.Hex(),
		"location", updated.LocationID.Hex())

	return s.view(ctx, updated), nil
}

// CleanupExpired removes expired unredeemed prizes. Redeemed vouchers
// are never touched, no matter how old.
func (s *RedemptionServiceImpl) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.issuedRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, types.NewStoreUnavailable("expired prize cleanup failed", err)
	}
	metrics.AddCleanedPrizes(removed)
	if removed > 0 {
		slog.Info("expired prize cleanup complete", "removed", removed)
	}
	return removed, nil
}

// authorize loads the staff user and the voucher and checks that the
// staff member may act on it. Admins may act anywhere; staff only at
// the location the prize was issued for.
func (s *RedemptionServiceImpl) authorize(ctx context.Context, staffID primitive.ObjectID, code string) (*models.StaffUser, *models.IssuedPrize, error) {
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, types.NewNotFound("staff user %s not found", staffID.Hex())
		}
		return nil, nil, types.NewStoreUnavailable("failed to load staff user", err)
	}
	if !staff.Active {
		return nil, nil, types.NewPolicyDenied("staff account is inactive")
	}

	prize, err := s.issuedRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, types.NewNotFound("no prize found for code %s", code)
		}
		return nil, nil, types.NewStoreUnavailable("failed to load prize", err)
	}

	if staff.Role != models.RoleAdmin && staff.LocationID != prize.LocationID {
		metrics.ObserveRedemption("denied")
		return nil, nil, types.NewPolicyDenied("prize %s belongs to another location", code)
	}

	return staff, prize, nil
}

// view assembles the counter-facing projection of an issued prize.
func (s *RedemptionServiceImpl) view(ctx context.Context, prize *models.IssuedPrize) *RedemptionView {
	playerName := ""
	if player, err := s.playerRepo.FindByID(ctx, prize.PlayerID); err == nil {
		playerName = player.DisplayName
	}
	return &RedemptionView{
		Code:       prize.Code,
		Status:     prize.Status,
		Expired:    prize.Expired(s.now()),
		PrizeName:  prize.PrizeName,
		PlayerName: playerName,
		LocationID: prize.LocationID,
		IssuedAt:   prize.IssuedAt,
		ExpiresAt:  prize.ExpiresAt,
		RedeemedAt: prize.RedeemedAt,
	}
}
