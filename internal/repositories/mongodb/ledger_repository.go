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

// Compile-time check to ensure LedgerRepository implements the interface
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository handles MongoDB operations for LedgerEntry. The
// collection is append-only; nothing here updates or deletes.
type LedgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection("ledger_entries"),
	}
}

// Create appends a new ledger entry
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return mapError(err)
}

// FindByPlayer retrieves a page of a player's entries, newest first
func (r *LedgerRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.LedgerEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	var entries []*models.LedgerEntry
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

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, mapError(err)
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return entries, nil
}

// SumKindsSince totals the amounts of the given kinds created at or
// after since. Amounts are stored positive, so the result is the gross
// volume for those kinds, not a signed balance.
func (r *LedgerRepository) SumKindsSince(ctx context.Context, playerID primitive.ObjectID, kinds []models.EntryKind, since time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"playerId":  playerID,
			"kind":      bson.M{"$in": kinds},
			"createdAt": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}
	return r.sumPipeline(ctx, pipeline)
}

// SumByPlayer computes the signed balance over every entry of a player
func (r *LedgerRepository) SumByPlayer(ctx context.Context, playerID primitive.ObjectID) (int64, error) {
	signed := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$kind", models.EntrySpent}},
		bson.M{"$multiply": bson.A{"$amount", -1}},
		"$amount",
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"playerId": playerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": signed},
		}}},
	}
	return r.sumPipeline(ctx, pipeline)
}

func (r *LedgerRepository) sumPipeline(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapError(err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, mapError(err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
