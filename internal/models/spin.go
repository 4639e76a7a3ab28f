package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpinOutcome is the recorded result of a wheel spin
type SpinOutcome string

const (
	OutcomeWin   SpinOutcome = "WIN"
	OutcomeNoWin SpinOutcome = "NO_WIN"
)

// SpinRecord represents one committed spin attempt. Roll keeps the raw
// draw value for auditability; IdempotencyKey is unique per player when
// the client supplies one.
type SpinRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID       primitive.ObjectID `bson:"playerId" json:"playerId"`
	CampaignID     primitive.ObjectID `bson:"campaignId" json:"campaignId"`
	LocationID     primitive.ObjectID `bson:"locationId" json:"locationId"`
	IdempotencyKey string             `bson:"idempotencyKey,omitempty" json:"-"`
	Cost           int64              `bson:"cost" json:"cost"`
	Roll           float64            `bson:"roll" json:"roll"`
	Outcome        SpinOutcome        `bson:"outcome" json:"outcome"`
	PrizeID        primitive.ObjectID `bson:"prizeId,omitempty" json:"prizeId,omitempty"`
	IssuedPrizeID  primitive.ObjectID `bson:"issuedPrizeId,omitempty" json:"issuedPrizeId,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
