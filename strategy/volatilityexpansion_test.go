package strategy

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

// squeezeHistory builds a long low volatility squeeze followed by a single
// breakout candle at the end.
func squeezeHistory(end time.Time) []shared.Candle {
	history := make([]shared.Candle, 0, 60)
	for idx := 0; idx < 59; idx++ {
		history = append(history, shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FiveMinute,
			Timestamp: end.Add(-time.Duration(59-idx) * 5 * time.Minute),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    1000,
		})
	}

	history = append(history, shared.Candle{
		Symbol:    "BTC-USD",
		Timeframe: shared.FiveMinute,
		Timestamp: end,
		Open:      100,
		High:      131,
		Low:       100,
		Close:     130,
		Volume:    5000,
	})

	return history
}

func newVolatilityExpansion(t *testing.T) *VolatilityExpansion {
	instance, err := NewVolatilityExpansion(&InstanceConfig{
		ID:      "str-2",
		Name:    VolatilityExpansionName,
		Version: "1.0.0",
		Symbols: []string{"BTC-USD"},
		Params:  Params{},
	})
	assert.NoError(t, err)

	return instance.(*VolatilityExpansion)
}

func TestVolatilityExpansionBreakout(t *testing.T) {
	strat := newVolatilityExpansion(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := squeezeHistory(inSession)
	candle := &history[len(history)-1]

	// Ensure a breakout out of a sustained squeeze enters long.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Long)
	assert.Equal(t, signal.Price, candle.Close)
	assert.Equal(t, signal.Confidence, 0.75)
	assert.Equal(t, signal.Meta["breakout_type"], "volatility_expansion")

	// Ensure the squeeze preceding the breakout was counted.
	assert.Equal(t, signal.Meta["squeeze_bars"], "20")
}

func TestVolatilityExpansionGuards(t *testing.T) {
	strat := newVolatilityExpansion(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

	// Ensure insufficient history yields no signal.
	short := squeezeHistory(inSession)[30:]
	signal, err := strat.OnCandle(&short[len(short)-1], short)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure a trending series without a squeeze yields no signal.
	trending := risingHistory(60, inSession)
	signal, err = strat.OnCandle(&trending[len(trending)-1], trending)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure candles outside the trading session yield no signal.
	outside := time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC)
	history := squeezeHistory(outside)
	signal, err = strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}
