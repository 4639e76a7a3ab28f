package mongodb

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure SpinRepository implements the interface
var _ repositories.SpinRepository = (*SpinRepository)(nil)

// SpinRepository handles MongoDB operations for SpinRecord
type SpinRepository struct {
	collection *mongo.Collection
}

// NewSpinRepository creates a new SpinRepository
func NewSpinRepository(db *mongo.Database) *SpinRepository {
	return &SpinRepository{
		collection: db.Collection("spin_records"),
	}
}

// Create inserts a new spin record. The partial unique index on
// (playerId, idempotencyKey) rejects a second commit under the same key
// with ErrDuplicateKey.
func (r *SpinRepository) Create(ctx context.Context, record *models.SpinRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return mapError(err)
}

// FindByID finds a spin record by ID
func (r *SpinRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpinRecord, error) {
	var record models.SpinRecord
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&record); err != nil {
		return nil, mapError(err)
	}
	return &record, nil
}

// FindByIdempotencyKey finds a player's committed spin for a client key
func (r *SpinRepository) FindByIdempotencyKey(ctx context.Context, playerID primitive.ObjectID, key string) (*models.SpinRecord, error) {
	var record models.SpinRecord
	filter := bson.M{"playerId": playerID, "idempotencyKey": key}
	if err := r.collection.FindOne(ctx, filter).Decode(&record); err != nil {
		return nil, mapError(err)
	}
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
	var records []*models.SpinRecord
	filter := bson.M{"playerId": playerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, mapError(err)
	}
	if records == nil {
		records = []*models.SpinRecord{}
	}
	return records, nil
}

// CountSince counts a player's spins in a campaign created at or after since
func (r *SpinRepository) CountSince(ctx context.Context, playerID, campaignID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"playerId":   playerID,
		"campaignId": campaignID,
		"createdAt":  bson.M{"$gte": since},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}
