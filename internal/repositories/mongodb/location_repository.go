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

// Compile-time check to ensure LocationRepository implements the interface
var _ repositories.LocationRepository = (*LocationRepository)(nil)

// LocationRepository handles MongoDB operations for Location
type LocationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{
		collection: db.Collection("locations"),
	}
}

// Create inserts a new location
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	location.CreatedAt = time.Now()
	location.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, location)
	return mapError(err)
}

// FindByID finds a location by ID
func (r *LocationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&location); err != nil {
		return nil, mapError(err)
	}
	return &location, nil
}

// FindActive retrieves all active locations
func (r *LocationRepository) FindActive(ctx context.Context) ([]*models.Location, error) {
	var locations []*models.Location
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &locations); err != nil {
		return nil, mapError(err)
	}
	if locations == nil {
		locations = []*models.Location{}
	}
	return locations, nil
}
