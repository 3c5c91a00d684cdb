package indicator

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestTrueRanges(t *testing.T) {
	highs := []float64{10, 12, 11}
	lows := []float64{8, 9, 7}
	closes := []float64{9, 11, 8}

	// Ensure the first position uses the plain high to low range.
	ranges := TrueRanges(highs, lows, closes)
	assert.Equal(t, ranges[0], float64(2))

	// Ensure gaps against the prior close widen the range.
	assert.Equal(t, ranges[1], float64(3))
	assert.Equal(t, ranges[2], float64(4))
}

func TestATR(t *testing.T) {
	highs := []float64{10, 12, 11, 13, 12}
	lows := []float64{8, 9, 7, 10, 9}
	closes := []float64{9, 11, 8, 12, 10}

	// Ensure positions before the first full period hold NaN.
	atr := ATR(highs, lows, closes, 2)
	assert.True(t, math.IsNaN(atr[0]))
	assert.True(t, math.IsNaN(atr[1]))

	// Ensure the seed averages true ranges and later values apply Wilder
	// smoothing.
	assert.Equal(t, atr[2], float64(3.5))
	assert.Equal(t, atr[3], float64(4.25))
	assert.Equal(t, atr[4], float64(3.625))

	// Ensure short series stay NaN.
	atr = ATR([]float64{1}, []float64{1}, []float64{1}, 2)
	assert.True(t, math.IsNaN(atr[0]))
}
