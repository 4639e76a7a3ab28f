package memory

import (
	"context"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure CampaignRepository implements the interface
var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository is the in-memory CampaignRepository implementation
type CampaignRepository struct {
	store *Store
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(store *Store) *CampaignRepository {
	return &CampaignRepository{store: store}
}

// Create inserts a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	r.store.campaigns[campaign.ID] = *campaign
	return nil
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	campaign, ok := r.store.campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &campaign, nil
}

// FindActiveByLocation retrieves the active campaigns running at a location
func (r *CampaignRepository) FindActiveByLocation(ctx context.Context, locationID primitive.ObjectID) ([]*models.Campaign, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	campaigns := []*models.Campaign{}
	for _, campaign := range r.store.campaigns {
		if campaign.LocationID == locationID && campaign.Active {
			c := campaign
			campaigns = append(campaigns, &c)
		}
	}
	return campaigns, nil
}
