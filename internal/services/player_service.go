package services

import (
	"context"
	"errors"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure PlayerServiceImpl implements PlayerService
var _ PlayerService = (*PlayerServiceImpl)(nil)

// PlayerServiceImpl serves the player-facing read endpoints
type PlayerServiceImpl struct {
	playerRepo repositories.PlayerRepository
	ledgerRepo repositories.LedgerRepository
	spinRepo   repositories.SpinRepository
	issuedRepo repositories.IssuedPrizeRepository
}

// NewPlayerService creates a new PlayerServiceImpl
func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	ledgerRepo repositories.LedgerRepository,
	spinRepo repositories.SpinRepository,
	issuedRepo repositories.IssuedPrizeRepository,
) *PlayerServiceImpl {
	return &PlayerServiceImpl{
		playerRepo: playerRepo,
		ledgerRepo: ledgerRepo,
		spinRepo:   spinRepo,
		issuedRepo: issuedRepo,
	}
}

// GetBalance returns the player's current credit balance
func (s *PlayerServiceImpl) GetBalance(ctx context.Context, playerID primitive.ObjectID) (int64, error) {
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, types.NewNotFound("player %s not found", playerID.Hex())
		}
		return 0, types.NewStoreUnavailable("failed to load player", err)
	}
	return player.Credits, nil
}

// GetLedger returns a page of the player's credit history, newest first
func (s *PlayerServiceImpl) GetLedger(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.LedgerEntry, error) {
	entries, err := s.ledgerRepo.FindByPlayer(ctx, playerID, page, limit)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to load ledger", err)
	}
	return entries, nil
}

// GetPrizes returns the player's issued prizes, newest first
func (s *PlayerServiceImpl) GetPrizes(ctx context.Context, playerID primitive.ObjectID) ([]*models.IssuedPrize, error) {
	prizes, err := s.issuedRepo.FindByPlayer(ctx, playerID)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to load prizes", err)
	}
	return prizes, nil
}

// GetSpins returns a page of the player's spin history, newest first
func (s *PlayerServiceImpl) GetSpins(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.SpinRecord, error) {
	spins, err := s.spinRepo.FindByPlayer(ctx, playerID, page, limit)
	if err != nil {
		return nil, types.NewStoreUnavailable("failed to load spin history", err)
	}
	return spins, nil
}
