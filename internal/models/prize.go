package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prize represents a winnable item configured for a campaign. Remaining
// is decremented atomically and never goes below zero; Probability is
// this prize's share of the unit interval in the wheel draw.
type Prize struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CampaignID   primitive.ObjectID `bson:"campaignId" json:"campaignId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Tier         string             `bson:"tier,omitempty" json:"tier,omitempty"` // e.g. "GRAND", "STANDARD", "CONSOLATION"
	InitialStock int64              `bson:"initialStock" json:"initialStock"`
	Remaining    int64              `bson:"remaining" json:"remaining"`
	Probability  float64            `bson:"probability" json:"probability"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InStock reports whether the prize can still be awarded.
func (p *Prize) InStock() bool {
	return p.Remaining > 0
}
