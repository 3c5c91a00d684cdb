package indicator

import "math"

// TrueRanges calculates the true range series from the provided highs, lows
// and closes. The first position uses the plain high to low range.
func TrueRanges(highs []float64, lows []float64, closes []float64) []float64 {
	result := make([]float64, len(highs))
	for idx := range highs {
		tr := highs[idx] - lows[idx]
		if idx > 0 {
			tr = math.Max(tr, math.Abs(highs[idx]-closes[idx-1]))
			tr = math.Max(tr, math.Abs(lows[idx]-closes[idx-1]))
		}

		result[idx] = tr
	}

	return result
}

// ATR calculates the average true range of the provided series using Wilder
// smoothing. Positions before the first full period hold NaN.
func ATR(highs []float64, lows []float64, closes []float64, period int) []float64 {
	result := nanSeries(len(highs))
	if period < 1 || len(highs) < period+1 {
		return result
	}

	ranges := TrueRanges(highs, lows, closes)

	var sum float64
	for idx := 1; idx <= period; idx++ {
		sum += ranges[idx]
	}

	prev := sum / float64(period)
	result[period] = prev

	for idx := period + 1; idx < len(ranges); idx++ {
		prev = (prev*float64(period-1) + ranges[idx]) / float64(period)
		result[idx] = prev
	}

	return result
}
