package strategy

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

// rangeBoundHistory builds a flat consolidation with the provided final candle
// appended as the current bar.
func rangeBoundHistory(bars int, end time.Time, last shared.Candle) []shared.Candle {
	history := make([]shared.Candle, 0, bars)
	for idx := 0; idx < bars-1; idx++ {
		history = append(history, shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FiveMinute,
			Timestamp: end.Add(-time.Duration(bars-1-idx) * 5 * time.Minute),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    1000,
		})
	}

	last.Symbol = "BTC-USD"
	last.Timeframe = shared.FiveMinute
	last.Timestamp = end
	history = append(history, last)

	return history
}

func newATRBreakout(t *testing.T) *ATRBreakout {
	instance, err := NewATRBreakout(&InstanceConfig{
		ID:      "str-4",
		Name:    ATRBreakoutName,
		Version: "1.0.0",
		Symbols: []string{"BTC-USD"},
		Params:  Params{},
	})
	assert.NoError(t, err)

	return instance.(*ATRBreakout)
}

func TestATRBreakoutLongEntry(t *testing.T) {
	strat := newATRBreakout(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	breakout := shared.Candle{Open: 100, High: 106, Low: 99, Close: 105, Volume: 2500}
	history := rangeBoundHistory(120, inSession, breakout)
	candle := &history[len(history)-1]

	// Ensure a close through the upper volatility band with trend alignment
	// enters long.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Long)
	assert.Equal(t, signal.Price, candle.Close)
	assert.Equal(t, signal.Confidence, 0.7)
	assert.Equal(t, signal.Meta["breakout_type"], "atr_breakout")
	assert.Equal(t, signal.Meta["trend_aligned"], "true")
}

func TestATRBreakoutGuards(t *testing.T) {
	strat := newATRBreakout(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

	// Ensure a close inside the volatility bands yields no signal.
	flat := shared.Candle{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	history := rangeBoundHistory(120, inSession, flat)
	signal, err := strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure insufficient history yields no signal.
	short := history[:80]
	signal, err = strat.OnCandle(&short[len(short)-1], short)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure candles outside the trading session yield no signal.
	outside := time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC)
	breakout := shared.Candle{Open: 100, High: 106, Low: 99, Close: 105, Volume: 2500}
	history = rangeBoundHistory(120, outside, breakout)
	signal, err = strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}
