package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
)

// RedemptionHandler handles voucher lookup and completion at the counter
type RedemptionHandler struct {
	redemptionService services.RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(redemptionService services.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

// Lookup handles GET /redemptions/:code
func (h *RedemptionHandler) Lookup(c *gin.Context) {
	staffID, ok := staffIDFrom(c)
	if !ok {
		return
	}
	code := normalizeCode(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redemption code is required"})
		return
	}

	view, err := h.redemptionService.Lookup(c.Request.Context(), staffID, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Complete handles POST /redemptions/:code/complete
func (h *RedemptionHandler) Complete(c *gin.Context) {
	staffID, ok := staffIDFrom(c)
	if !ok {
		return
	}
	code := normalizeCode(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redemption code is required"})
		return
	}

	view, err := h.redemptionService.Complete(c.Request.Context(), staffID, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// normalizeCode uppercases a voucher code so hand-typed lookups match
// the stored form.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
