package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaffRole distinguishes venue staff from program administrators
type StaffRole string

const (
	RoleStaff StaffRole = "staff"
	RoleAdmin StaffRole = "admin"
)

// StaffUser represents a venue employee or administrator. Staff are
// bound to one location and may only redeem prizes issued there; admins
// have no location binding.
type StaffUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         StaffRole          `bson:"role" json:"role"`
	LocationID   primitive.ObjectID `bson:"locationId,omitempty" json:"locationId,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
