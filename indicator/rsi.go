package indicator

// RSI calculates the relative strength index of the provided series using
// Wilder smoothing. Positions before the first full period hold NaN.
func RSI(series []float64, period int) []float64 {
	result := nanSeries(len(series))
	if period < 1 || len(series) < period+1 {
		return result
	}

	var avgGain, avgLoss float64
	for idx := 1; idx <= period; idx++ {
		change := series[idx] - series[idx-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = rsiValue(avgGain, avgLoss)

	for idx := period + 1; idx < len(series); idx++ {
		change := series[idx] - series[idx-1]

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[idx] = rsiValue(avgGain, avgLoss)
	}

	return result
}

func rsiValue(avgGain float64, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
