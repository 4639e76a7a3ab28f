package services

import (
	"context"
	"errors"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/ratelimit"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"github.com/spinpointhq/spinpoint-backend/pkg/geo"
)

// AntiFraudGate screens check-in attempts before any credit is
// awarded. It enforces, in order: account status, venue status, attempt
// velocity, physical proximity and the per-venue cooldown. Velocity is
// checked before proximity so spoofed-coordinate probing still burns
// the attempt budget.
type AntiFraudGate struct {
	checkinRepo     repositories.CheckInRepository
	limiter         *ratelimit.Limiter
	proximityMeters float64
	cooldown        time.Duration
}

// NewAntiFraudGate creates a new AntiFraudGate
func NewAntiFraudGate(checkinRepo repositories.CheckInRepository, limiter *ratelimit.Limiter, cfg *config.Config) *AntiFraudGate {
	return &AntiFraudGate{
		checkinRepo:     checkinRepo,
		limiter:         limiter,
		proximityMeters: cfg.Fraud.ProximityMeters,
		cooldown:        cfg.Fraud.Cooldown,
	}
}

// Admit decides whether the player may check in at the location from
// the reported position. It returns the measured distance in meters so
// the caller can record it on the session.
func (g *AntiFraudGate) Admit(ctx context.Context, player *models.Player, location *models.Location, lat, lng float64, at time.Time) (float64, error) {
	if !player.Active {
		return 0, types.NewPolicyDenied("player account is inactive")
	}
	if !location.Active {
		return 0, types.NewPolicyDenied("location %s is not accepting check-ins", location.Name)
	}

	if !g.limiter.Allow(player.ID.Hex()) {
		return 0, types.NewPolicyDenied("too many check-in attempts, slow down")
	}

	distance := geo.Haversine(lat, lng, location.Latitude, location.Longitude)
	if distance > g.proximityMeters {
		return distance, types.NewPolicyDenied("too far from %s: %.0fm away, must be within %.0fm",
			location.Name, distance, g.proximityMeters)
	}

	latest, err := g.checkinRepo.FindLatest(ctx, player.ID, location.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return distance, types.NewStoreUnavailable("failed to load check-in history", err)
	}
	if err == nil {
		if elapsed := at.Sub(latest.CheckedInAt); elapsed < g.cooldown {
			return distance, types.NewPolicyDenied("cooldown active at %s, try again in %s",
				location.Name, (g.cooldown - elapsed).Round(time.Second))
		}
	}

	return distance, nil
}
