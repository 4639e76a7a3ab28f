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

// Compile-time check to ensure IssuedPrizeRepository implements the interface
var _ repositories.IssuedPrizeRepository = (*IssuedPrizeRepository)(nil)

// IssuedPrizeRepository handles MongoDB operations for IssuedPrize
type IssuedPrizeRepository struct {
	collection *mongo.Collection
}

// NewIssuedPrizeRepository creates a new IssuedPrizeRepository
func NewIssuedPrizeRepository(db *mongo.Database) *IssuedPrizeRepository {
	return &IssuedPrizeRepository{
		collection: db.Collection("issued_prizes"),
	}
}

// Create inserts a new issued prize
func (r *IssuedPrizeRepository) Create(ctx context.Context, prize *models.IssuedPrize) error {
	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, prize)
	return mapError(err)
}

// FindByID finds an issued prize by ID
func (r *IssuedPrizeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.IssuedPrize, error) {
	var prize models.IssuedPrize
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&prize); err != nil {
		return nil, mapError(err)
	}
	return &prize, nil
}

// FindByCode finds an issued prize by its redemption code
func (r *IssuedPrizeRepository) FindByCode(ctx context.Context, code string) (*models.IssuedPrize, error) {
	var prize models.IssuedPrize
	filter := bson.M{"code": code}
	if err := r.collection.FindOne(ctx, filter).Decode(&prize); err != nil {
		return nil, mapError(err)
	}
	return &prize, nil
}

// FindByPlayer retrieves a player's issued prizes, newest first
func (r *IssuedPrizeRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]*models.IssuedPrize, error) {
	var prizes []*models.IssuedPrize
	filter := bson.M{"playerId": playerID}
	opts := options.Find().SetSort(bson.D{{Key: "issuedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &prizes); err != nil {
		return nil, mapError(err)
	}
	if prizes == nil {
		prizes = []*models.IssuedPrize{}
	}
	return prizes, nil
}

// MarkRedeemed flips the prize from ISSUED to REDEEMED. The status
// guard in the filter makes the transition one-way and single-shot; a
// concurrent second redemption matches nothing and gets
// ErrConditionFailed.
func (r *IssuedPrizeRepository) MarkRedeemed(ctx context.Context, id primitive.ObjectID, staffID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "status": models.PrizeStatusIssued}
	update := bson.M{"$set": bson.M{
		"status":     models.PrizeStatusRedeemed,
		"redeemedAt": at,
		"redeemedBy": staffID,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrConditionFailed
	}
	return nil
}

// DeleteExpired removes unredeemed prizes whose expiry passed before
// cutoff. Redeemed prizes are kept as history regardless of age.
func (r *IssuedPrizeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.PrizeStatusIssued,
		"expiresAt": bson.M{"$lt": cutoff},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, mapError(err)
	}
	return result.DeletedCount, nil
}
