package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure SpinRepository implements the interface
var _ repositories.SpinRepository = (*SpinRepository)(nil)

// SpinRepository is the in-memory SpinRepository implementation
type SpinRepository struct {
	store *Store
}

// NewSpinRepository creates a new SpinRepository
func NewSpinRepository(store *Store) *SpinRepository {
	return &SpinRepository{store: store}
}

// Create inserts a new spin record, enforcing idempotency key uniqueness
func (r *SpinRepository) Create(ctx context.Context, record *models.SpinRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if record.IdempotencyKey != "" {
		if _, exists := r.store.spinByIdem[idemKey(record.PlayerID, record.IdempotencyKey)]; exists {
			return repositories.ErrDuplicateKey
		}
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	r.store.spins[record.ID] = *record
	if record.IdempotencyKey != "" {
		r.store.spinByIdem[idemKey(record.PlayerID, record.IdempotencyKey)] = record.ID
	}
	return nil
}

// FindByID finds a spin record by ID
func (r *SpinRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpinRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.spins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

// FindByIdempotencyKey finds a player's committed spin for a client key
func (r *SpinRepository) FindByIdempotencyKey(ctx context.Context, playerID primitive.ObjectID, key string) (*models.SpinRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.spinByIdem[idemKey(playerID, key)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	record := r.store.spins[id]
	return &record, nil
}

// FindByPlayer retrieves a page of a player's spins, newest first
func (r *SpinRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.SpinRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	r.store.mu.RLock()
	matched := []models.SpinRecord{}
	for _, record := range r.store.spins {
		if record.PlayerID == playerID {
			matched = append(matched, record)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := (page - 1) * limit
	if start >= len(matched) {
		return []*models.SpinRecord{}, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*models.SpinRecord, 0, end-start)
	for i := start; i < end; i++ {
		rec := matched[i]
		out = append(out, &rec)
	}
	return out, nil
}

// CountSince counts a player's spins in a campaign created at or after since
func (r *SpinRepository) CountSince(ctx context.Context, playerID, campaignID primitive.ObjectID, since time.Time) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, record := range r.store.spins {
		if record.PlayerID != playerID || record.CampaignID != campaignID {
			continue
		}
		if record.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}
