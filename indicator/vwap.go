package indicator

import (
	"github.com/dnldd/signal/shared"
)

// VWAP calculates the cumulative volume weighted average price series over
// the provided candles. Positions with no accumulated volume hold zero.
func VWAP(candles []shared.Candle) []float64 {
	result := make([]float64, len(candles))

	var typicalPriceVolume, volume float64
	for idx := range candles {
		typicalPrice := (candles[idx].High + candles[idx].Low + candles[idx].Close) / 3
		typicalPriceVolume += typicalPrice * candles[idx].Volume
		volume += candles[idx].Volume

		if volume == 0 {
			continue
		}

		result[idx] = typicalPriceVolume / volume
	}

	return result
}
