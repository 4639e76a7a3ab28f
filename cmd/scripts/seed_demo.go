package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	mongorepo "github.com/spinpointhq/spinpoint-backend/internal/repositories/mongodb"
	"github.com/spinpointhq/spinpoint-backend/internal/utils"
	"github.com/spinpointhq/spinpoint-backend/pkg/mongodb"
)

// Seeds a local database with one venue, one running campaign with a
// three-prize wheel, a demo player and a staff account, then prints
// bearer tokens for exercising the API by hand.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	now := time.Now()

	location := &models.Location{
		Name:      "Corner Coffee Roasters",
		Address:   "12 Market Street",
		Latitude:  51.5074,
		Longitude: -0.1278,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	locationRepo := mongorepo.NewLocationRepository(db)
	if err := locationRepo.Create(ctx, location); err != nil {
		slog.Error("failed to seed location", "error", err)
		os.Exit(1)
	}

	campaign := &models.Campaign{
		LocationID:   location.ID,
		Name:         "Grand Opening Wheel",
		Description:  "Spin for free drinks and merch during opening month",
		SpinCost:     10,
		DailySpinCap: 5,
		StartDate:    now.AddDate(0, 0, -1),
		EndDate:      now.AddDate(0, 1, 0),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	campaignRepo := mongorepo.NewCampaignRepository(db)
	if err := campaignRepo.Create(ctx, campaign); err != nil {
		slog.Error("failed to seed campaign", "error", err)
		os.Exit(1)
	}

	prizes := []*models.Prize{
		{CampaignID: campaign.ID, Name: "Free Espresso", Tier: "CONSOLATION", InitialStock: 200, Remaining: 200, Probability: 0.20},
		{CampaignID: campaign.ID, Name: "Branded Tumbler", Tier: "STANDARD", InitialStock: 40, Remaining: 40, Probability: 0.05},
		{CampaignID: campaign.ID, Name: "One Month of Coffee", Tier: "GRAND", InitialStock: 2, Remaining: 2, Probability: 0.005},
	}
	prizeRepo := mongorepo.NewPrizeRepository(db)
	for _, prize := range prizes {
		prize.CreatedAt = now
		prize.UpdatedAt = now
		if err := prizeRepo.Create(ctx, prize); err != nil {
			slog.Error("failed to seed prize", "prize", prize.Name, "error", err)
			os.Exit(1)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-staff-password"), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash staff password", "error", err)
		os.Exit(1)
	}
	staff := &models.StaffUser{
		Email:        "staff@demo.local",
		Name:         "Demo Staff",
		PasswordHash: string(hash),
		Role:         models.RoleStaff,
		LocationID:   location.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	staffRepo := mongorepo.NewStaffRepository(db)
	if err := staffRepo.Create(ctx, staff); err != nil {
		slog.Error("failed to seed staff", "error", err)
		os.Exit(1)
	}

	player := &models.Player{
		ExternalRef: "demo-player-1",
		DisplayName: "Demo Player",
		Email:       "player@demo.local",
		Credits:     0,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	playerRepo := mongorepo.NewPlayerRepository(db)
	if err := playerRepo.Create(ctx, player); err != nil {
		slog.Error("failed to seed player", "error", err)
		os.Exit(1)
	}

	// Demo tokens in the shape the auth middleware expects. Production
	// tokens come from the external identity service.
	playerToken, err := utils.GenerateJWT(player.ID.Hex(), "player", cfg)
	if err != nil {
		slog.Error("failed to sign player token", "error", err)
		os.Exit(1)
	}
	staffToken, err := utils.GenerateJWT(staff.ID.Hex(), string(staff.Role), cfg)
	if err != nil {
		slog.Error("failed to sign staff token", "error", err)
		os.Exit(1)
	}

	fmt.Printf("location:  %s\n", location.ID.Hex())
	fmt.Printf("campaign:  %s\n", campaign.ID.Hex())
	fmt.Printf("player:    %s\n", player.ID.Hex())
	fmt.Printf("staff:     %s\n", staff.ID.Hex())
	fmt.Printf("player bearer token:\n%s\n", playerToken)
	fmt.Printf("staff bearer token:\n%s\n", staffToken)
}
