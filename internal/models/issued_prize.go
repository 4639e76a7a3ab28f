package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeStatus is the lifecycle state of an issued prize. ISSUED moves to
// REDEEMED exactly once; there is no way back.
type PrizeStatus string

const (
	PrizeStatusIssued   PrizeStatus = "ISSUED"
	PrizeStatusRedeemed PrizeStatus = "REDEEMED"
)

// IssuedPrize represents a concrete prize claim won by a player. Code is
// the short voucher string staff look up at the counter.
type IssuedPrize struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID   primitive.ObjectID `bson:"playerId" json:"playerId"`
	PrizeID    primitive.ObjectID `bson:"prizeId" json:"prizeId"`
	CampaignID primitive.ObjectID `bson:"campaignId" json:"campaignId"`
	LocationID primitive.ObjectID `bson:"locationId" json:"locationId"`
	SpinID     primitive.ObjectID `bson:"spinId" json:"spinId"`
	PrizeName  string             `bson:"prizeName" json:"prizeName"`
	Code       string             `bson:"code" json:"code"`
	Status     PrizeStatus        `bson:"status" json:"status"`
	IssuedAt   time.Time          `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt  time.Time          `bson:"expiresAt" json:"expiresAt"`
	RedeemedAt *time.Time         `bson:"redeemedAt,omitempty" json:"redeemedAt,omitempty"`
	RedeemedBy primitive.ObjectID `bson:"redeemedBy,omitempty" json:"redeemedBy,omitempty"`
}

// Expired reports whether the claim is past its expiry at the given instant.
func (p *IssuedPrize) Expired(at time.Time) bool {
	return !p.ExpiresAt.IsZero() && at.After(p.ExpiresAt)
}
