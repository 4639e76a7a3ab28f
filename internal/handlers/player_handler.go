package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
)

// PlayerHandler serves the authenticated player's own data
type PlayerHandler struct {
	playerService services.PlayerService
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

// GetBalance handles GET /players/me/balance
func (h *PlayerHandler) GetBalance(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}

	balance, err := h.playerService.GetBalance(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetLedger handles GET /players/me/ledger
func (h *PlayerHandler) GetLedger(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	entries, err := h.playerService.GetLedger(c.Request.Context(), playerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "page": page, "limit": limit})
}

// GetPrizes handles GET /players/me/prizes
func (h *PlayerHandler) GetPrizes(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}

	prizes, err := h.playerService.GetPrizes(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// GetSpins handles GET /players/me/spins
func (h *PlayerHandler) GetSpins(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	spins, err := h.playerService.GetSpins(c.Request.Context(), playerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spins": spins, "page": page, "limit": limit})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
