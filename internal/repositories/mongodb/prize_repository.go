package mongodb

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeRepository = (*PrizeRepository)(nil)

// PrizeRepository handles MongoDB operations for Prize
type PrizeRepository struct {
	collection *mongo.Collection
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(db *mongo.Database) *PrizeRepository {
	return &PrizeRepository{
		collection: db.Collection("prizes"),
	}
}

// Create inserts a new prize
func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, prize)
	return mapError(err)
}

// FindByID finds a prize by ID
func (r *PrizeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	var prize models.Prize
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&prize); err != nil {
		return nil, mapError(err)
	}
	return &prize, nil
}

// FindByCampaign retrieves all prizes configured for a campaign
func (r *PrizeRepository) FindByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Prize, error) {
	var prizes []models.Prize
	filter := bson.M{"campaignId": campaignID}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &prizes); err != nil {
		return nil, mapError(err)
	}
	if prizes == nil {
		prizes = []models.Prize{}
	}
	return prizes, nil
}

// DecrementStock takes one unit of stock. The filter only matches while
// remaining is positive, so concurrent awards can never drive stock
// below zero; the loser sees ErrConditionFailed.
func (r *PrizeRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "remaining": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"remaining": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrConditionFailed
	}
	return nil
}
