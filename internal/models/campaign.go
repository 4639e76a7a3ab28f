package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign represents a spin promotion running at a single location
type Campaign struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	LocationID      primitive.ObjectID `bson:"locationId" json:"locationId"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	SpinCost        int64              `bson:"spinCost" json:"spinCost"`
	DailySpinCap    int                `bson:"dailySpinCap" json:"dailySpinCap"`
	PrizeExpiryDays int                `bson:"prizeExpiryDays" json:"prizeExpiryDays"`
	StartDate       time.Time          `bson:"startDate" json:"startDate"`
	EndDate         time.Time          `bson:"endDate" json:"endDate"`
	Active          bool               `bson:"active" json:"active"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Runs reports whether the campaign accepts spins at the given instant.
func (c *Campaign) Runs(at time.Time) bool {
	if !c.Active {
		return false
	}
	if at.Before(c.StartDate) {
		return false
	}
	if !c.EndDate.IsZero() && at.After(c.EndDate) {
		return false
	}
	return true
}
