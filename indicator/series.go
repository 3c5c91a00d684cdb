package indicator

import (
	"math"

	"github.com/dnldd/signal/shared"
)

// nanSeries returns a series of the provided size filled with NaN.
func nanSeries(size int) []float64 {
	series := make([]float64, size)
	for idx := range series {
		series[idx] = math.NaN()
	}

	return series
}

// Opens extracts the open series from the provided candles.
func Opens(candles []shared.Candle) []float64 {
	series := make([]float64, len(candles))
	for idx := range candles {
		series[idx] = candles[idx].Open
	}

	return series
}

// Highs extracts the high series from the provided candles.
func Highs(candles []shared.Candle) []float64 {
	series := make([]float64, len(candles))
	for idx := range candles {
		series[idx] = candles[idx].High
	}

	return series
}

// Lows extracts the low series from the provided candles.
func Lows(candles []shared.Candle) []float64 {
	series := make([]float64, len(candles))
	for idx := range candles {
		series[idx] = candles[idx].Low
	}

	return series
}

// Closes extracts the close series from the provided candles.
func Closes(candles []shared.Candle) []float64 {
	series := make([]float64, len(candles))
	for idx := range candles {
		series[idx] = candles[idx].Close
	}

	return series
}

// Volumes extracts the volume series from the provided candles.
func Volumes(candles []shared.Candle) []float64 {
	series := make([]float64, len(candles))
	for idx := range candles {
		series[idx] = candles[idx].Volume
	}

	return series
}

// PercentileRank returns the percentage of values in the provided series
// strictly below the provided value, skipping NaN entries. It returns NaN
// when the series has no usable entries.
func PercentileRank(series []float64, value float64) float64 {
	var below, total int
	for idx := range series {
		if math.IsNaN(series[idx]) {
			continue
		}

		total++
		if series[idx] < value {
			below++
		}
	}

	if total == 0 {
		return math.NaN()
	}

	return float64(below) / float64(total) * 100
}
