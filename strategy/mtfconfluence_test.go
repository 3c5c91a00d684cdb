package strategy

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

// risingHistory builds a steadily rising five minute candle history ending
// at the provided instant, with bullish candle bodies.
func risingHistory(bars int, end time.Time) []shared.Candle {
	history := make([]shared.Candle, 0, bars)
	for idx := 0; idx < bars; idx++ {
		close := 100 + 0.1*float64(idx)
		history = append(history, shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FiveMinute,
			Timestamp: end.Add(-time.Duration(bars-1-idx) * 5 * time.Minute),
			Open:      close - 0.05,
			High:      close + 0.2,
			Low:       close - 0.2,
			Close:     close,
			Volume:    1000,
		})
	}

	return history
}

func newMTFConfluence(t *testing.T) *MTFConfluence {
	instance, err := NewMTFConfluence(&InstanceConfig{
		ID:      "str-1",
		Name:    MTFConfluenceName,
		Version: "1.0.0",
		Symbols: []string{"BTC-USD"},
		Params:  Params{},
	})
	assert.NoError(t, err)

	return instance.(*MTFConfluence)
}

func TestMTFConfluenceEntry(t *testing.T) {
	strat := newMTFConfluence(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := risingHistory(200, inSession)
	candle := &history[len(history)-1]

	// Ensure a bullish pullback candle in an uptrend enters long and
	// records the position.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Long)
	assert.Equal(t, signal.Price, candle.Close)
	assert.Equal(t, signal.Confidence, 0.7)
	assert.Equal(t, signal.Meta["entry"], "true")
	assert.NotNil(t, strat.Position(candle))

	// Ensure no second entry fires while the position is open.
	next := *candle
	next.Timestamp = candle.Timestamp.Add(5 * time.Minute)
	next.Open = candle.Close
	next.Close = candle.Close + 0.1
	nextHistory := append(history[1:len(history):len(history)], next)

	signal, err = strat.OnCandle(&next, nextHistory)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}

func TestMTFConfluenceStopLossExit(t *testing.T) {
	strat := newMTFConfluence(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := risingHistory(200, inSession)
	candle := &history[len(history)-1]

	// Ensure a close below the stop distance exits with the opposing side.
	strat.OpenPosition(candle, shared.Long, candle.Close*1.05, "")

	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Short)
	assert.Equal(t, signal.Meta["exit_reason"], StopLossExit)
	assert.Nil(t, strat.Position(candle))
}

func TestMTFConfluenceGuards(t *testing.T) {
	strat := newMTFConfluence(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

	// Ensure insufficient history yields no signal.
	short := risingHistory(100, inSession)
	signal, err := strat.OnCandle(&short[len(short)-1], short)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure candles outside the trading session yield no signal.
	outside := time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC)
	history := risingHistory(200, outside)
	signal, err = strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}
