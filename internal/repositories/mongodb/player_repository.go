package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure PlayerRepository implements the interface
var _ repositories.PlayerRepository = (*PlayerRepository)(nil)

// PlayerRepository handles MongoDB operations for Player
type PlayerRepository struct {
	collection *mongo.Collection
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *mongo.Database) *PlayerRepository {
	return &PlayerRepository{
		collection: db.Collection("players"),
	}
}

// Create inserts a new player
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	if player.ID.IsZero() {
		player.ID = primitive.NewObjectID()
	}
	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, player)
	return mapError(err)
}

// FindByID finds a player by ID
func (r *PlayerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	var player models.Player
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&player); err != nil {
		return nil, mapError(err)
	}
	return &player, nil
}

// FindByExternalRef finds a player by its stable external key
func (r *PlayerRepository) FindByExternalRef(ctx context.Context, externalRef string) (*models.Player, error) {
	var player models.Player
	filter := bson.M{"externalRef": externalRef}
	if err := r.collection.FindOne(ctx, filter).Decode(&player); err != nil {
		return nil, mapError(err)
	}
	return &player, nil
}

// AdjustCredits atomically adds delta to the cached balance
func (r *PlayerRepository) AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if delta == 0 {
		return errors.New("credit delta must be non-zero")
	}
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"credits": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// DebitCredits subtracts amount, guarded so the balance never goes
// negative. A concurrent debit that would overdraw fails the filter and
// surfaces as ErrConditionFailed.
func (r *PlayerRepository) DebitCredits(ctx context.Context, id primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}
	filter := bson.M{"_id": id, "credits": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"credits": -amount},
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
