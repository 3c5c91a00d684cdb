package indicator

// RollingMax calculates the rolling window maximum of the provided series.
// Positions before a full window hold NaN.
func RollingMax(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period {
		return result
	}

	for idx := period - 1; idx < len(series); idx++ {
		max := series[idx-period+1]
		for pos := idx - period + 2; pos <= idx; pos++ {
			if series[pos] > max {
				max = series[pos]
			}
		}

		result[idx] = max
	}

	return result
}

// RollingMin calculates the rolling window minimum of the provided series.
// Positions before a full window hold NaN.
func RollingMin(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period {
		return result
	}

	for idx := period - 1; idx < len(series); idx++ {
		min := series[idx-period+1]
		for pos := idx - period + 2; pos <= idx; pos++ {
			if series[pos] < min {
				min = series[pos]
			}
		}

		result[idx] = min
	}

	return result
}
