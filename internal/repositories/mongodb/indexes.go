package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the engine's correctness depends
// on. The unique indexes back the dedupe and idempotency guarantees
// and must exist before traffic is served.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"players": {
			{
				Keys:    bson.D{{Key: "externalRef", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"campaigns": {
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "active", Value: 1}}},
		},
		"prizes": {
			{Keys: bson.D{{Key: "campaignId", Value: 1}}},
		},
		"checkin_sessions": {
			{
				Keys:    bson.D{{Key: "dedupeHash", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "locationId", Value: 1}, {Key: "checkedInAt", Value: -1}}},
		},
		"ledger_entries": {
			{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "kind", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"spin_records": {
			{
				Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "campaignId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"issued_prizes": {
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "issuedAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		},
		"staff": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}
	return nil
}
