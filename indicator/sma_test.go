package indicator

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestSMA(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}

	// Ensure positions before a full window hold NaN.
	sma := SMA(series, 3)
	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))

	// Ensure the window average slides across the series.
	assert.Equal(t, sma[2], float64(2))
	assert.Equal(t, sma[3], float64(3))
	assert.Equal(t, sma[4], float64(4))

	// Ensure short series stay NaN.
	sma = SMA([]float64{1}, 3)
	assert.True(t, math.IsNaN(sma[0]))
}

func TestStdDev(t *testing.T) {
	series := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	// Ensure the full window population deviation matches the known value.
	stddev := StdDev(series, 8)
	assert.Equal(t, stddev[7], float64(2))

	// Ensure positions before a full window hold NaN.
	assert.True(t, math.IsNaN(stddev[6]))

	// Ensure a constant window deviates by zero.
	stddev = StdDev([]float64{3, 3, 3}, 3)
	assert.Equal(t, stddev[2], float64(0))
}
