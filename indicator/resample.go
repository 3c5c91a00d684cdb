package indicator

import (
	"github.com/dnldd/signal/shared"
)

// Resample compresses the provided candles into groups of factor candles,
// aggregating open as first, high as max, low as min, close as last and
// volume as sum. Groups align to the start of the series and a partial tail
// group is kept.
func Resample(candles []shared.Candle, factor int) []shared.Candle {
	if factor < 1 || len(candles) == 0 {
		return nil
	}

	groups := (len(candles) + factor - 1) / factor
	result := make([]shared.Candle, 0, groups)

	for idx := range candles {
		if idx%factor == 0 {
			result = append(result, candles[idx])
			continue
		}

		current := &result[len(result)-1]
		if candles[idx].High > current.High {
			current.High = candles[idx].High
		}
		if candles[idx].Low < current.Low {
			current.Low = candles[idx].Low
		}
		current.Close = candles[idx].Close
		current.Volume += candles[idx].Volume
		current.Count += candles[idx].Count
	}

	return result
}
