package indicator

// EMA calculates the exponential moving average of the provided series,
// seeded with a simple average of the first period values. Positions before
// the seed hold NaN.
func EMA(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period {
		return result
	}

	var sum float64
	for idx := 0; idx < period; idx++ {
		sum += series[idx]
	}

	prev := sum / float64(period)
	result[period-1] = prev

	multiplier := 2 / (float64(period) + 1)
	for idx := period; idx < len(series); idx++ {
		prev = (series[idx]-prev)*multiplier + prev
		result[idx] = prev
	}

	return result
}
