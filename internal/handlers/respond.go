package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinpointhq/spinpoint-backend/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFor maps reward error codes onto HTTP statuses.
func statusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrCodeValidation:
		return http.StatusBadRequest
	case types.ErrCodePolicyDenied:
		return http.StatusForbidden
	case types.ErrCodeNotFound:
		return http.StatusNotFound
	case types.ErrCodeConflict, types.ErrCodeAlreadyRedeemed:
		return http.StatusConflict
	case types.ErrCodeExpired:
		return http.StatusGone
	case types.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders a service error with its mapped status. Errors
// outside the reward taxonomy stay opaque to the client.
func respondError(c *gin.Context, err error) {
	var re *types.RewardError
	if errors.As(err, &re) {
		c.JSON(statusFor(re.Code), gin.H{"error": re.Message, "code": re.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
}

// playerIDFrom pulls the authenticated player ID set by PlayerAuth.
func playerIDFrom(c *gin.Context) (primitive.ObjectID, bool) {
	return contextID(c, "playerID")
}

// staffIDFrom pulls the authenticated staff ID set by StaffAuth.
func staffIDFrom(c *gin.Context) (primitive.ObjectID, bool) {
	return contextID(c, "staffID")
}

func contextID(c *gin.Context, key string) (primitive.ObjectID, bool) {
	v, ok := c.Get(key)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return primitive.NilObjectID, false
	}
	return id, true
}
