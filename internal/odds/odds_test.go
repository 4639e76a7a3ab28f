package odds

import (
	"math"
	"testing"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testPrize(idSuffix byte, probability float64, remaining int64) models.Prize {
	var id primitive.ObjectID
	id[11] = idSuffix
	return models.Prize{
		ID:           id,
		Name:         "prize",
		InitialStock: remaining,
		Remaining:    remaining,
		Probability:  probability,
	}
}

func TestSelectSegmentsFollowIDOrder(t *testing.T) {
	prizes := []models.Prize{
		testPrize(1, 0.2, 10),
		testPrize(2, 0.3, 10),
		testPrize(3, 0.1, 10),
	}
	SortByID(prizes)

	cases := []struct {
		roll   float64
		winIdx int // -1 means no-win
	}{
		{0.0, 0},
		{0.1999, 0},
		{0.2, 1}, // boundary belongs to the next segment
		{0.4999, 1},
		{0.5, 2},
		{0.5999, 2},
		{0.6, -1},
		{0.99, -1},
	}
	for _, tc := range cases {
		prize, won := Select(prizes, tc.roll)
		if tc.winIdx < 0 {
			assert.False(t, won, "roll %f should be a no-win", tc.roll)
			continue
		}
		require.True(t, won, "roll %f should win", tc.roll)
		assert.Equal(t, prizes[tc.winIdx].ID, prize.ID, "roll %f landed in the wrong segment", tc.roll)
	}
}

func TestSelectExhaustedSegmentBecomesNoWin(t *testing.T) {
	prizes := []models.Prize{
		testPrize(1, 0.2, 5),
		testPrize(2, 0.3, 0), // out of stock
		testPrize(3, 0.1, 5),
	}
	SortByID(prizes)

	// Layout collapses to [0, 0.2) -> p1, [0.2, 0.3) -> p3, rest no-win.
	prize, won := Select(prizes, 0.25)
	require.True(t, won)
	assert.Equal(t, prizes[2].ID, prize.ID)

	// The exhausted prize's mass is not redistributed.
	_, won = Select(prizes, 0.45)
	assert.False(t, won)
	_, won = Select(prizes, 0.31)
	assert.False(t, won)
}

func TestSelectAllExhausted(t *testing.T) {
	prizes := []models.Prize{
		testPrize(1, 0.5, 0),
		testPrize(2, 0.5, 0),
	}
	SortByID(prizes)

	for _, roll := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		_, won := Select(prizes, roll)
		assert.False(t, won)
	}
}

func TestValidate(t *testing.T) {
	ok := []models.Prize{testPrize(1, 0.4, 1), testPrize(2, 0.6, 1)}
	assert.NoError(t, Validate(ok))

	overweight := []models.Prize{testPrize(1, 0.7, 1), testPrize(2, 0.6, 1)}
	assert.Error(t, Validate(overweight))

	negative := []models.Prize{testPrize(1, -0.1, 1)}
	assert.Error(t, Validate(negative))

	// Float accumulation noise just under 1.0 must not be rejected.
	thirds := []models.Prize{
		testPrize(1, 1.0/3.0, 1),
		testPrize(2, 1.0/3.0, 1),
		testPrize(3, 1.0/3.0, 1),
	}
	assert.NoError(t, Validate(thirds))
}

func TestCryptoRollRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		roll, err := CryptoRoll()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, roll, 0.0)
		assert.Less(t, roll, 1.0)
	}
}

// TestDrawFairness runs a large simulated batch and checks each
// prize's win count stays within three standard deviations of its
// expected frequency.
func TestDrawFairness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}

	prizes := []models.Prize{
		testPrize(1, 0.10, 1 << 30),
		testPrize(2, 0.25, 1 << 30),
		testPrize(3, 0.05, 1 << 30),
	}
	SortByID(prizes)

	const draws = 20000
	counts := make(map[byte]int)
	noWins := 0
	for i := 0; i < draws; i++ {
		roll, err := CryptoRoll()
		require.NoError(t, err)
		prize, won := Select(prizes, roll)
		if !won {
			noWins++
			continue
		}
		counts[prize.ID[11]]++
	}

	checkWithinThreeSigma := func(p float64, observed int) {
		t.Helper()
		expected := float64(draws) * p
		sigma := math.Sqrt(float64(draws) * p * (1 - p))
		assert.InDelta(t, expected, float64(observed), 3*sigma,
			"observed %d for probability %f, expected %f +/- %f", observed, p, expected, 3*sigma)
	}

	checkWithinThreeSigma(0.10, counts[1])
	checkWithinThreeSigma(0.25, counts[2])
	checkWithinThreeSigma(0.05, counts[3])
	checkWithinThreeSigma(0.60, noWins)
}
