package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Player represents a participating identity in the rewards program.
// Credits carries the cached ledger balance and is only mutated inside
// the same transaction as the ledger entry that justifies the change.
type Player struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ExternalRef string             `bson:"externalRef" json:"externalRef"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Credits     int64              `bson:"credits" json:"credits"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
