package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInSession represents one accepted venue check-in. DedupeHash is
// unique-indexed so a replayed request maps back to the same session
// instead of awarding twice.
type CheckInSession struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID       primitive.ObjectID `bson:"playerId" json:"playerId"`
	LocationID     primitive.ObjectID `bson:"locationId" json:"locationId"`
	Latitude       float64            `bson:"latitude" json:"latitude"`
	Longitude      float64            `bson:"longitude" json:"longitude"`
	DistanceMeters float64            `bson:"distanceMeters" json:"distanceMeters"`
	CreditsAwarded int64              `bson:"creditsAwarded" json:"creditsAwarded"`
	DedupeHash     string             `bson:"dedupeHash" json:"-"`
	CheckedInAt    time.Time          `bson:"checkedInAt" json:"checkedInAt"`
}
