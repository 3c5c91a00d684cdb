package indicator

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

func TestResample(t *testing.T) {
	start := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	candles := make([]shared.Candle, 0, 7)
	for idx := 0; idx < 7; idx++ {
		candles = append(candles, shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FiveMinute,
			Timestamp: start.Add(time.Duration(idx) * 5 * time.Minute),
			Open:      float64(10 + idx),
			High:      float64(20 + idx),
			Low:       float64(5 + idx),
			Close:     float64(15 + idx),
			Volume:    1,
		})
	}

	// Ensure groups aggregate first open, max high, min low, last close and
	// summed volume, keeping the partial tail group.
	resampled := Resample(candles, 3)
	assert.Equal(t, len(resampled), 3)

	assert.Equal(t, resampled[0].Open, float64(10))
	assert.Equal(t, resampled[0].High, float64(22))
	assert.Equal(t, resampled[0].Low, float64(5))
	assert.Equal(t, resampled[0].Close, float64(17))
	assert.Equal(t, resampled[0].Volume, float64(3))
	assert.True(t, resampled[0].Timestamp.Equal(start))

	assert.Equal(t, resampled[1].Open, float64(13))
	assert.Equal(t, resampled[1].Close, float64(20))

	// Ensure the partial tail group holds the remaining candle.
	assert.Equal(t, resampled[2].Open, float64(16))
	assert.Equal(t, resampled[2].Close, float64(21))
	assert.Equal(t, resampled[2].Volume, float64(1))

	// Ensure degenerate inputs yield no groups.
	assert.Equal(t, len(Resample(nil, 3)), 0)
	assert.Equal(t, len(Resample(candles, 0)), 0)
}
