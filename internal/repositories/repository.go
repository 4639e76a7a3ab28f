package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage-level sentinel errors. Implementations translate their
// driver's failures into these so services stay backend-agnostic.
var (
	// ErrNotFound signals the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey signals a unique index rejected an insert.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConditionFailed signals a conditional update matched no
	// document, meaning a concurrent writer got there first.
	ErrConditionFailed = errors.New("update condition failed")
)

// TxRunner executes fn atomically. Every write issued through the fn's
// context commits together or not at all.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlayerRepository defines the interface for player data operations
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error)
	FindByExternalRef(ctx context.Context, externalRef string) (*models.Player, error)
	// AdjustCredits unconditionally adds delta to the cached balance.
	AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int64) error
	// DebitCredits subtracts amount only while the balance stays
	// non-negative; returns ErrConditionFailed otherwise.
	DebitCredits(ctx context.Context, id primitive.ObjectID, amount int64) error
}

// LocationRepository defines the interface for location data operations
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
	FindActive(ctx context.Context) ([]*models.Location, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindActiveByLocation(ctx context.Context, locationID primitive.ObjectID) ([]*models.Campaign, error)
}

// PrizeRepository defines the interface for prize data operations
type PrizeRepository interface {
	Create(ctx context.Context, prize *models.Prize) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error)
	FindByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Prize, error)
	// DecrementStock takes one unit off remaining stock only while
	// stock is positive; returns ErrConditionFailed when exhausted.
	DecrementStock(ctx context.Context, id primitive.ObjectID) error
}

// CheckInRepository defines the interface for check-in session operations
type CheckInRepository interface {
	// Create inserts a session; returns ErrDuplicateKey when another
	// session already holds the same dedupe hash.
	Create(ctx context.Context, session *models.CheckInSession) error
	FindByDedupeHash(ctx context.Context, hash string) (*models.CheckInSession, error)
	// FindLatest returns the player's most recent session at the
	// location, or ErrNotFound when there is none.
	FindLatest(ctx context.Context, playerID, locationID primitive.ObjectID) (*models.CheckInSession, error)
}

// LedgerRepository defines the interface for credit ledger operations.
// Entries are append-only; there are no update or delete methods.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	FindByPlayer(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.LedgerEntry, error)
	// SumKindsSince totals the (unsigned) amounts of the given kinds
	// created at or after since.
	SumKindsSince(ctx context.Context, playerID primitive.ObjectID, kinds []models.EntryKind, since time.Time) (int64, error)
	// SumByPlayer returns the signed sum over all of a player's
	// entries, the authoritative balance.
	SumByPlayer(ctx context.Context, playerID primitive.ObjectID) (int64, error)
}

// SpinRepository defines the interface for spin record operations
type SpinRepository interface {
	// Create inserts a spin record; returns ErrDuplicateKey when the
	// player already committed a spin under the same idempotency key.
	Create(ctx context.Context, record *models.SpinRecord) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpinRecord, error)
	FindByIdempotencyKey(ctx context.Context, playerID primitive.ObjectID, key string) (*models.SpinRecord, error)
	FindByPlayer(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.SpinRecord, error)
	CountSince(ctx context.Context, playerID, campaignID primitive.ObjectID, since time.Time) (int64, error)
}

// IssuedPrizeRepository defines the interface for issued prize operations
type IssuedPrizeRepository interface {
	Create(ctx context.Context, prize *models.IssuedPrize) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.IssuedPrize, error)
	FindByCode(ctx context.Context, code string) (*models.IssuedPrize, error)
	FindByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]*models.IssuedPrize, error)
	// MarkRedeemed flips ISSUED to REDEEMED exactly once; returns
	// ErrConditionFailed when the prize is no longer in ISSUED state.
	MarkRedeemed(ctx context.Context, id primitive.ObjectID, staffID primitive.ObjectID, at time.Time) error
	// DeleteExpired removes unredeemed prizes whose expiry passed
	// before cutoff and reports how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// StaffRepository defines the interface for staff user data operations
type StaffRepository interface {
	Create(ctx context.Context, staff *models.StaffUser) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.StaffUser, error)
	FindByEmail(ctx context.Context, email string) (*models.StaffUser, error)
}
