package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/services"
)

// AdminHandler handles administrative maintenance endpoints
type AdminHandler struct {
	redemptionService services.RedemptionService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(redemptionService services.RedemptionService) *AdminHandler {
	return &AdminHandler{
		redemptionService: redemptionService,
	}
}

// CleanupExpired handles POST /admin/cleanup-expired. The scheduler
// runs the same sweep on an interval; this endpoint exists for
// operators who do not want to wait for it.
func (h *AdminHandler) CleanupExpired(c *gin.Context) {
	removed, err := h.redemptionService.CleanupExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
