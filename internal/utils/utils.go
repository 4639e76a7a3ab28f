package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spinpointhq/spinpoint-backend/internal/config"
)

// codeAlphabet is Crockford base32: no I, L, O or U, so codes survive
// being read aloud at a counter. Its length divides 256 evenly, which
// keeps the byte-to-character mapping unbiased.
const codeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateJWT mints a signed HS256 token for the given subject and role.
func GenerateJWT(subject string, role string, cfg *config.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
		"iat":  time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// GenerateRedemptionCode generates a random voucher code of the given length.
func GenerateRedemptionCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// CheckInDedupeHash derives the deterministic key that collapses retried
// check-in requests into one session. Requests from the same player at
// the same location inside the same window bucket hash identically.
func CheckInDedupeHash(playerID, locationID string, at time.Time, window time.Duration) string {
	bucket := at.Truncate(window).Unix()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", playerID, locationID, bucket)))
	return hex.EncodeToString(sum[:])
}
