package indicator

import "math"

// SMA calculates the simple moving average of the provided series. Positions
// before a full window hold NaN.
func SMA(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period {
		return result
	}

	var sum float64
	for idx := range series {
		sum += series[idx]
		if idx >= period {
			sum -= series[idx-period]
		}
		if idx >= period-1 {
			result[idx] = sum / float64(period)
		}
	}

	return result
}

// StdDev calculates the rolling population standard deviation of the
// provided series. Positions before a full window hold NaN.
func StdDev(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period {
		return result
	}

	for idx := period - 1; idx < len(series); idx++ {
		var sum float64
		for pos := idx - period + 1; pos <= idx; pos++ {
			sum += series[pos]
		}
		mean := sum / float64(period)

		var variance float64
		for pos := idx - period + 1; pos <= idx; pos++ {
			diff := series[pos] - mean
			variance += diff * diff
		}

		result[idx] = math.Sqrt(variance / float64(period))
	}

	return result
}
