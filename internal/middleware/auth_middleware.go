package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolePlayer is the token role carried by player-facing clients. Staff
// roles come from models.StaffRole.
const RolePlayer = "player"

// PlayerAuth authenticates player tokens and stores the player's ID in
// the context under "playerID".
func PlayerAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, cfg)
		if !ok {
			return
		}
		if claims.role != RolePlayer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "player token required"})
			return
		}
		c.Set("playerID", claims.subject)
		c.Next()
	}
}

// StaffAuth authenticates staff tokens and requires one of the given
// roles. The staff ID lands in the context under "staffID" and the role
// under "staffRole".
func StaffAuth(cfg *config.Config, roles ...models.StaffRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[string(role)] = true
	}

	return func(c *gin.Context) {
		claims, ok := parseToken(c, cfg)
		if !ok {
			return
		}
		if !allowed[claims.role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Set("staffID", claims.subject)
		c.Set("staffRole", claims.role)
		c.Next()
	}
}

type tokenClaims struct {
	subject primitive.ObjectID
	role    string
}

// parseToken validates the bearer token and extracts the subject and
// role claims. On failure it aborts the request itself and returns
// ok=false.
func parseToken(c *gin.Context, cfg *config.Config) (tokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return tokenClaims{}, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
		return tokenClaims{}, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		}
		return tokenClaims{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return tokenClaims{}, false
	}

	sub, _ := claims["sub"].(string)
	subject, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return tokenClaims{}, false
	}
	role, _ := claims["role"].(string)

	return tokenClaims{subject: subject, role: role}, true
}
