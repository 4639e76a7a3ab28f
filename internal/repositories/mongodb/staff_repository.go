package mongodb

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure StaffRepository implements the interface
var _ repositories.StaffRepository = (*StaffRepository)(nil)

// StaffRepository handles MongoDB operations for StaffUser
type StaffRepository struct {
	collection *mongo.Collection
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{
		collection: db.Collection("staff"),
	}
}

// Create inserts a new staff user
func (r *StaffRepository) Create(ctx context.Context, staff *models.StaffUser) error {
	if staff.ID.IsZero() {
		staff.ID = primitive.NewObjectID()
	}
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, staff)
	return mapError(err)
}

// FindByID finds a staff user by ID
func (r *StaffRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StaffUser, error) {
	var staff models.StaffUser
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&staff); err != nil {
		return nil, mapError(err)
	}
	return &staff, nil
}

// FindByEmail finds a staff user by email
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	var staff models.StaffUser
	filter := bson.M{"email": email}
	if err := r.collection.FindOne(ctx, filter).Decode(&staff); err != nil {
		return nil, mapError(err)
	}
	return &staff, nil
}
