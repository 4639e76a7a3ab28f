package memory

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure PlayerRepository implements the interface
var _ repositories.PlayerRepository = (*PlayerRepository)(nil)

// PlayerRepository is the in-memory PlayerRepository implementation
type PlayerRepository struct {
	store *Store
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

// Create inserts a new player
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if player.ID.IsZero() {
		player.ID = primitive.NewObjectID()
	}
	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	r.store.players[player.ID] = *player
	return nil
}

// FindByID finds a player by ID
func (r *PlayerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	player, ok := r.store.players[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &player, nil
}

// FindByExternalRef finds a player by its stable external key
func (r *PlayerRepository) FindByExternalRef(ctx context.Context, externalRef string) (*models.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, player := range r.store.players {
		if player.ExternalRef == externalRef {
			p := player
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// AdjustCredits atomically adds delta to the cached balance
func (r *PlayerRepository) AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if delta == 0 {
		return errors.New("credit delta must be non-zero")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	player, ok := r.store.players[id]
	if !ok {
		return repositories.ErrNotFound
	}
	player.Credits += delta
	player.UpdatedAt = time.Now()
	r.store.players[id] = player
	return nil
}

// DebitCredits subtracts amount, refusing to overdraw
func (r *PlayerRepository) DebitCredits(ctx context.Context, id primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	player, ok := r.store.players[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if player.Credits < amount {
		return repositories.ErrConditionFailed
	}
	player.Credits -= amount
	player.UpdatedAt = time.Now()
	r.store.players[id] = player
	return nil
}
