package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure IssuedPrizeRepository implements the interface
var _ repositories.IssuedPrizeRepository = (*IssuedPrizeRepository)(nil)

// IssuedPrizeRepository is the in-memory IssuedPrizeRepository implementation
type IssuedPrizeRepository struct {
	store *Store
}

// NewIssuedPrizeRepository creates a new IssuedPrizeRepository
func NewIssuedPrizeRepository(store *Store) *IssuedPrizeRepository {
	return &IssuedPrizeRepository{store: store}
}

// Create inserts a new issued prize, enforcing code uniqueness
func (r *IssuedPrizeRepository) Create(ctx context.Context, prize *models.IssuedPrize) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.issuedByCode[prize.Code]; exists {
		return repositories.ErrDuplicateKey
	}
	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	r.store.issued[prize.ID] = *prize
	r.store.issuedByCode[prize.Code] = prize.ID
	return nil
}

// FindByID finds an issued prize by ID
func (r *IssuedPrizeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.IssuedPrize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prize, ok := r.store.issued[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &prize, nil
}

// FindByCode finds an issued prize by its redemption code
func (r *IssuedPrizeRepository) FindByCode(ctx context.Context, code string) (*models.IssuedPrize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.issuedByCode[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	prize := r.store.issued[id]
	return &prize, nil
}

// FindByPlayer retrieves a player's issued prizes, newest first
func (r *IssuedPrizeRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]*models.IssuedPrize, error) {
	r.store.mu.RLock()
	matched := []models.IssuedPrize{}
	for _, prize := range r.store.issued {
		if prize.PlayerID == playerID {
			matched = append(matched, prize)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].IssuedAt.After(matched[j].IssuedAt)
	})

	out := make([]*models.IssuedPrize, 0, len(matched))
	for i := range matched {
		p := matched[i]
		out = append(out, &p)
	}
	return out, nil
}

// MarkRedeemed flips the prize from ISSUED to REDEEMED exactly once
func (r *IssuedPrizeRepository) MarkRedeemed(ctx context.Context, id primitive.ObjectID, staffID primitive.ObjectID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prize, ok := r.store.issued[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if prize.Status != models.PrizeStatusIssued {
		return repositories.ErrConditionFailed
	}
	redeemedAt := at
	prize.Status = models.PrizeStatusRedeemed
	prize.RedeemedAt = &redeemedAt
	prize.RedeemedBy = staffID
	r.store.issued[id] = prize
	return nil
}

// DeleteExpired removes unredeemed prizes whose expiry passed before cutoff
func (r *IssuedPrizeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, prize := range r.store.issued {
		if prize.Status != models.PrizeStatusIssued {
			continue
		}
		if prize.ExpiresAt.IsZero() || !prize.ExpiresAt.Before(cutoff) {
			continue
		}
		delete(r.store.issued, id)
		delete(r.store.issuedByCode, prize.Code)
		removed++
	}
	return removed, nil
}
