package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"github.com/spinpointhq/spinpoint-backend/api/routes"
	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/handlers"
	"github.com/spinpointhq/spinpoint-backend/internal/ratelimit"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	mongorepo "github.com/spinpointhq/spinpoint-backend/internal/repositories/mongodb"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
	"github.com/spinpointhq/spinpoint-backend/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	var playerRepo repositories.PlayerRepository = mongorepo.NewPlayerRepository(db)
	var locationRepo repositories.LocationRepository = mongorepo.NewLocationRepository(db)
	var campaignRepo repositories.CampaignRepository = mongorepo.NewCampaignRepository(db)
	var prizeRepo repositories.PrizeRepository = mongorepo.NewPrizeRepository(db)
	var checkinRepo repositories.CheckInRepository = mongorepo.NewCheckInRepository(db)
	var ledgerRepo repositories.LedgerRepository = mongorepo.NewLedgerRepository(db)
	var spinRepo repositories.SpinRepository = mongorepo.NewSpinRepository(db)
	var issuedRepo repositories.IssuedPrizeRepository = mongorepo.NewIssuedPrizeRepository(db)
	var staffRepo repositories.StaffRepository = mongorepo.NewStaffRepository(db)
	txRunner := mongorepo.NewTxRunner(mongoClient.Client())

	velocity := ratelimit.New(cfg.Fraud.VelocityAttempts, cfg.Fraud.VelocityWindow)
	gate := services.NewAntiFraudGate(checkinRepo, velocity, cfg)
	limits := services.NewCreditLimiter(ledgerRepo, cfg)

	checkinService := services.NewCheckInService(playerRepo, locationRepo, checkinRepo, ledgerRepo, gate, limits, txRunner, cfg)
	spinService := services.NewSpinService(playerRepo, locationRepo, campaignRepo, prizeRepo, spinRepo, ledgerRepo, issuedRepo, limits, txRunner, cfg)
	redemptionService := services.NewRedemptionService(issuedRepo, staffRepo, playerRepo)
	playerService := services.NewPlayerService(playerRepo, ledgerRepo, spinRepo, issuedRepo)

	router := routes.SetupRouter(cfg, routes.Handlers{
		CheckIn:    handlers.NewCheckInHandler(checkinService),
		Spin:       handlers.NewSpinHandler(spinService),
		Player:     handlers.NewPlayerHandler(playerService),
		Redemption: handlers.NewRedemptionHandler(redemptionService),
		Admin:      handlers.NewAdminHandler(redemptionService),
	})

	scheduler, err := startCleanupScheduler(cfg, redemptionService)
	if err != nil {
		slog.Error("failed to start cleanup scheduler", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("error stopping cleanup scheduler", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

// setupLogger installs the process-wide slog handler at the configured
// level.
func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// startCleanupScheduler runs the expired-prize sweep on the configured
// interval. Returns a nil scheduler when cleanup is disabled.
func startCleanupScheduler(cfg *config.Config, redemptions services.RedemptionService) (gocron.Scheduler, error) {
	if !cfg.Cleanup.Enabled {
		slog.Info("expired-prize cleanup disabled")
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Cleanup.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			removed, err := redemptions.CleanupExpired(ctx)
			if err != nil {
				slog.Error("expired-prize cleanup failed", "error", err)
				return
			}
			if removed > 0 {
				slog.Info("expired prizes removed", "count", removed)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	slog.Info("expired-prize cleanup scheduled", "interval", cfg.Cleanup.Interval.String())
	return scheduler, nil
}
