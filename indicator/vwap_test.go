package indicator

import (
	"testing"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

func TestVWAP(t *testing.T) {
	// Ensure positions with no accumulated volume hold zero.
	candles := []shared.Candle{
		{High: 9, Low: 3, Close: 6, Volume: 0},
		{High: 10, Low: 4, Close: 7, Volume: 2},
		{High: 12, Low: 6, Close: 9, Volume: 2},
	}

	vwap := VWAP(candles)
	assert.Equal(t, len(vwap), 3)
	assert.Equal(t, vwap[0], float64(0))

	// Ensure the series accumulates typical price weighted by volume.
	assert.Equal(t, vwap[1], float64(7))
	assert.Equal(t, vwap[2], float64(8))

	// Ensure empty input yields an empty series.
	assert.Equal(t, len(VWAP(nil)), 0)
}
