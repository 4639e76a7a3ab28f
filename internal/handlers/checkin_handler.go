package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInHandler handles check-in related HTTP requests
type CheckInHandler struct {
	checkinService services.CheckInService
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(checkinService services.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		checkinService: checkinService,
	}
}

// CheckInRequest is the body of POST /checkins. Coordinates are
// pointers so 0.0 still binds.
type CheckInRequest struct {
	LocationID string   `json:"locationId" binding:"required"`
	Latitude   *float64 `json:"lat" binding:"required"`
	Longitude  *float64 `json:"lng" binding:"required"`
}

// CheckIn handles POST /checkins
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	playerID, ok := playerIDFrom(c)
	if !ok {
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	locationID, err := primitive.ObjectIDFromHex(req.LocationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID format"})
		return
	}

	result, err := h.checkinService.CheckIn(c.Request.Context(), playerID, locationID, *req.Latitude, *req.Longitude)
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
