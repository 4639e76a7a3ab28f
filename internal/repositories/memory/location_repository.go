package memory

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure LocationRepository implements the interface
var _ repositories.LocationRepository = (*LocationRepository)(nil)

// LocationRepository is the in-memory LocationRepository implementation
type LocationRepository struct {
	store *Store
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(store *Store) *LocationRepository {
	return &LocationRepository{store: store}
}

// Create inserts a new location
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	location.CreatedAt = time.Now()
	location.UpdatedAt = time.Now()
	r.store.locations[location.ID] = *location
	return nil
}

// FindByID finds a location by ID
func (r *LocationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	location, ok := r.store.locations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &location, nil
}

// FindActive retrieves all active locations
func (r *LocationRepository) FindActive(ctx context.Context) ([]*models.Location, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	locations := []*models.Location{}
	for _, location := range r.store.locations {
		if location.Active {
			l := location
			locations = append(locations, &l)
		}
	}
	return locations, nil
}
