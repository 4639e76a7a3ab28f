// Package odds implements the weighted wheel draw. Each in-stock prize
// owns a half-open segment of [0, 1) sized by its probability weight,
// laid out in ascending prize id order; whatever mass is left over is
// the no-win region. Segments of exhausted prizes fall into the no-win
// region rather than being redistributed, so a win never becomes more
// likely as stock runs out.
package odds

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
)

// probabilityEpsilon absorbs float accumulation noise when validating
// that weights fit inside the unit interval.
const probabilityEpsilon = 1e-9

// rollDenominator is 2^53, the largest power of two whose values are all
// exactly representable as float64.
const rollDenominator = 1 << 53

// RollFunc produces a uniform draw in [0, 1). Tests substitute fixed
// values; production uses CryptoRoll.
type RollFunc func() (float64, error)

// CryptoRoll draws a uniform value in [0, 1) from crypto/rand.
func CryptoRoll() (float64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(rollDenominator))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return float64(n.Int64()) / float64(rollDenominator), nil
}

// SortByID orders prizes into their canonical draw order. The segment
// layout depends only on this order and the weights, never on insertion
// or query order.
func SortByID(prizes []models.Prize) {
	sort.Slice(prizes, func(i, j int) bool {
		return prizes[i].ID.Hex() < prizes[j].ID.Hex()
	})
}

// TotalProbability sums the weights of all prizes, in or out of stock.
func TotalProbability(prizes []models.Prize) float64 {
	total := 0.0
	for i := range prizes {
		total += prizes[i].Probability
	}
	return total
}

// Validate checks that every weight is non-negative and the total does
// not exceed the unit interval.
func Validate(prizes []models.Prize) error {
	for i := range prizes {
		if prizes[i].Probability < 0 {
			return fmt.Errorf("prize %s has negative probability %f", prizes[i].ID.Hex(), prizes[i].Probability)
		}
	}
	if total := TotalProbability(prizes); total > 1+probabilityEpsilon {
		return fmt.Errorf("prize probabilities sum to %f, exceeding 1.0", total)
	}
	return nil
}

// Select maps a roll to the winning prize, or reports no-win. Prizes
// must already be in draw order (SortByID). Segments are half-open, so
// a roll landing exactly on a boundary belongs to the next segment.
func Select(prizes []models.Prize, roll float64) (models.Prize, bool) {
	cum := 0.0
	for i := range prizes {
		if !prizes[i].InStock() {
			continue
		}
		cum += prizes[i].Probability
		if roll < cum {
			return prizes[i], true
		}
	}
	return models.Prize{}, false
}
