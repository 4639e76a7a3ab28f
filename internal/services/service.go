package services

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInResult is the outcome of an accepted or replayed check-in
type CheckInResult struct {
	SessionID      primitive.ObjectID `json:"sessionId"`
	CreditsAwarded int64              `json:"creditsAwarded"`
	NewBalance     int64              `json:"newBalance"`
	Replayed       bool               `json:"replayed"`
}

// SpinResult is the outcome of a committed or replayed spin
type SpinResult struct {
	SpinID     primitive.ObjectID  `json:"spinId"`
	Outcome    models.SpinOutcome  `json:"outcome"`
	Prize      *models.IssuedPrize `json:"prize,omitempty"`
	NewBalance int64               `json:"newBalance"`
	Replayed   bool                `json:"replayed"`
}

// RedemptionView is what counter staff see when looking up a voucher
type RedemptionView struct {
	Code       string             `json:"code"`
	Status     models.PrizeStatus `json:"status"`
	Expired    bool               `json:"expired"`
	PrizeName  string             `json:"prizeName"`
	PlayerName string             `json:"playerName"`
	LocationID primitive.ObjectID `json:"locationId"`
	IssuedAt   time.Time          `json:"issuedAt"`
	ExpiresAt  time.Time          `json:"expiresAt"`
	RedeemedAt *time.Time         `json:"redeemedAt,omitempty"`
}

// CheckInService defines the interface for check-in operations
type CheckInService interface {
	// CheckIn admits a player at a venue and awards check-in credits.
	// A replayed request returns the original session without a second
	// award.
	CheckIn(ctx context.Context, playerID, locationID primitive.ObjectID, lat, lng float64) (*CheckInResult, error)
}

// SpinService defines the interface for spin operations
type SpinService interface {
	// Spin charges the campaign's spin cost and resolves one wheel
	// draw atomically. A non-empty idempotencyKey makes retries return
	// the originally committed result.
	Spin(ctx context.Context, playerID, campaignID primitive.ObjectID, idempotencyKey string) (*SpinResult, error)
}

// RedemptionService defines the interface for prize redemption operations
type RedemptionService interface {
	// Lookup shows a voucher to authorized staff without changing it.
	Lookup(ctx context.Context, staffID primitive.ObjectID, code string) (*RedemptionView, error)
	// Complete marks a voucher redeemed, exactly once.
	Complete(ctx context.Context, staffID primitive.ObjectID, code string) (*RedemptionView, error)
	// CleanupExpired removes expired unredeemed prizes and reports how
	// many were removed.
	CleanupExpired(ctx context.Context) (int64, error)
}

// PlayerService defines the interface for player-facing queries
type PlayerService interface {
	GetBalance(ctx context.Context, playerID primitive.ObjectID) (int64, error)
	GetLedger(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.LedgerEntry, error)
	GetPrizes(ctx context.Context, playerID primitive.ObjectID) ([]*models.IssuedPrize, error)
	GetSpins(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.SpinRecord, error)
}
