package memory

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeRepository = (*PrizeRepository)(nil)

// PrizeRepository is the in-memory PrizeRepository implementation
type PrizeRepository struct {
	store *Store
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(store *Store) *PrizeRepository {
	return &PrizeRepository{store: store}
}

// Create inserts a new prize
func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = time.Now()
	r.store.prizes[prize.ID] = *prize
	return nil
}

// FindByID finds a prize by ID
func (r *PrizeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prize, ok := r.store.prizes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &prize, nil
}

// FindByCampaign retrieves all prizes configured for a campaign
func (r *PrizeRepository) FindByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Prize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prizes := []models.Prize{}
	for _, prize := range r.store.prizes {
		if prize.CampaignID == campaignID {
			prizes = append(prizes, prize)
		}
	}
	return prizes, nil
}

// DecrementStock takes one unit of stock, refusing once exhausted
func (r *PrizeRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prize, ok := r.store.prizes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if prize.Remaining <= 0 {
		return repositories.ErrConditionFailed
	}
	prize.Remaining--
	prize.UpdatedAt = time.Now()
	r.store.prizes[id] = prize
	return nil
}
