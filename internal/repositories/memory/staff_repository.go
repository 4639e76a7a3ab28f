package memory

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure StaffRepository implements the interface
var _ repositories.StaffRepository = (*StaffRepository)(nil)

// StaffRepository is the in-memory StaffRepository implementation
type StaffRepository struct {
	store *Store
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(store *Store) *StaffRepository {
	return &StaffRepository{store: store}
}

// Create inserts a new staff user, enforcing email uniqueness
func (r *StaffRepository) Create(ctx context.Context, staff *models.StaffUser) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.staffByEmail[staff.Email]; exists {
		return repositories.ErrDuplicateKey
	}
	if staff.ID.IsZero() {
		staff.ID = primitive.NewObjectID()
	}
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()
	r.store.staff[staff.ID] = *staff
	r.store.staffByEmail[staff.Email] = staff.ID
	return nil
}

// FindByID finds a staff user by ID
func (r *StaffRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StaffUser, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	staff, ok := r.store.staff[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &staff, nil
}

// FindByEmail finds a staff user by email
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.staffByEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	staff := r.store.staff[id]
	return &staff, nil
}
