package memory

import (
	"context"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure CheckInRepository implements the interface
var _ repositories.CheckInRepository = (*CheckInRepository)(nil)

// CheckInRepository is the in-memory CheckInRepository implementation
type CheckInRepository struct {
	store *Store
}

// NewCheckInRepository creates a new CheckInRepository
func NewCheckInRepository(store *Store) *CheckInRepository {
	return &CheckInRepository{store: store}
}

// Create inserts a new check-in session, enforcing dedupe hash uniqueness
func (r *CheckInRepository) Create(ctx context.Context, session *models.CheckInSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.checkinByHash[session.DedupeHash]; exists {
		return repositories.ErrDuplicateKey
	}
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	r.store.checkins[session.ID] = *session
	r.store.checkinByHash[session.DedupeHash] = session.ID
	return nil
}

// FindByDedupeHash finds the session holding the given dedupe hash
func (r *CheckInRepository) FindByDedupeHash(ctx context.Context, hash string) (*models.CheckInSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.checkinByHash[hash]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	session := r.store.checkins[id]
	return &session, nil
}

// FindLatest returns the player's most recent session at the location
func (r *CheckInRepository) FindLatest(ctx context.Context, playerID, locationID primitive.ObjectID) (*models.CheckInSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *models.CheckInSession
	for _, session := range r.store.checkins {
		if session.PlayerID != playerID || session.LocationID != locationID {
			continue
		}
		if latest == nil || session.CheckedInAt.After(latest.CheckedInAt) {
			s := session
			latest = &s
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}
