package mongodb

import (
	"context"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CheckInRepository implements the interface
var _ repositories.CheckInRepository = (*CheckInRepository)(nil)

// CheckInRepository handles MongoDB operations for CheckInSession
type CheckInRepository struct {
	collection *mongo.Collection
}

// NewCheckInRepository creates a new CheckInRepository
func NewCheckInRepository(db *mongo.Database) *CheckInRepository {
	return &CheckInRepository{
		collection: db.Collection("checkin_sessions"),
	}
}

// Create inserts a new check-in session. The unique dedupe hash index
// turns a replayed request into ErrDuplicateKey instead of a second
// session.
func (r *CheckInRepository) Create(ctx context.Context, session *models.CheckInSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, session)
	return mapError(err)
}

// FindByDedupeHash finds the session holding the given dedupe hash
func (r *CheckInRepository) FindByDedupeHash(ctx context.Context, hash string) (*models.CheckInSession, error) {
	var session models.CheckInSession
	filter := bson.M{"dedupeHash": hash}
	if err := r.collection.FindOne(ctx, filter).Decode(&session); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// FindLatest returns the player's most recent session at the location
func (r *CheckInRepository) FindLatest(ctx context.Context, playerID, locationID primitive.ObjectID) (*models.CheckInSession, error) {
	var session models.CheckInSession
	filter := bson.M{"playerId": playerID, "locationId": locationID}
	opts := options.FindOne().SetSort(bson.D{{Key: "checkedInAt", Value: -1}})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&session); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}
