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

// Compile-time check to ensure CampaignRepository implements the interface
var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository handles MongoDB operations for Campaign
type CampaignRepository struct {
	collection *mongo.Collection
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection("campaigns"),
	}
}

// Create inserts a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, campaign)
	return mapError(err)
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&campaign); err != nil {
		return nil, mapError(err)
	}
	return &campaign, nil
}

// FindActiveByLocation retrieves the active campaigns running at a location
func (r *CampaignRepository) FindActiveByLocation(ctx context.Context, locationID primitive.ObjectID) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	filter := bson.M{"locationId": locationID, "active": true}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &campaigns); err != nil {
		return nil, mapError(err)
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}
