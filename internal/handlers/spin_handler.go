package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpinHandler handles spin-related HTTP requests
type SpinHandler struct {
	spinService services.SpinService
}

// NewSpinHandler creates a new SpinHandler
func NewSpinHandler(spinService services.SpinService) *SpinHandler {
	return &SpinHandler{
		spinService: spinService,
	}
}

// SpinRequest is the body of POST /spins. The idempotency key is
// optional; clients that retry should send one.
type SpinRequest struct {
	CampaignID     string `json:"campaignId" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// Spin handles POST /spins
func (h *SpinHandler) Spin(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}

	var req SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.IdempotencyKey) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
		return
	}

	campaignID, err := primitive.ObjectIDFromHex(req.CampaignID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID format"})
		return
	}

	result, err := h.spinService.Spin(c.Request.Context(), playerID, campaignID, req.IdempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
