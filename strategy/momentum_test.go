package strategy

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

// pullbackHistory builds a forty bar advance followed by a shallow twenty
// bar decline, leaving the last close above the cumulative VWAP band.
func pullbackHistory(end time.Time) []shared.Candle {
	history := make([]shared.Candle, 0, 60)
	for idx := 0; idx < 60; idx++ {
		var close float64
		if idx < 40 {
			close = 90 + 0.25*float64(idx)
		} else {
			close = 99.75 - 0.1*float64(idx-39)
		}

		history = append(history, shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FiveMinute,
			Timestamp: end.Add(-time.Duration(59-idx) * 5 * time.Minute),
			Open:      close - 0.1,
			High:      close + 0.3,
			Low:       close - 0.3,
			Close:     close,
			Volume:    1000,
		})
	}

	return history
}

func newMomentum(t *testing.T) *Momentum {
	instance, err := NewMomentum(&InstanceConfig{
		ID:      "str-3",
		Name:    MomentumName,
		Version: "1.0.0",
		Symbols: []string{"BTC-USD"},
		Params:  Params{},
	})
	assert.NoError(t, err)

	return instance.(*Momentum)
}

func TestMomentumLongEntry(t *testing.T) {
	strat := newMomentum(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := pullbackHistory(inSession)
	candle := &history[len(history)-1]

	// Ensure a bullish candle above the VWAP lower band with a cooled RSI
	// enters long.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Long)
	assert.Equal(t, signal.Price, candle.Close)
	assert.Equal(t, signal.Confidence, 0.65)
	assert.Equal(t, signal.Meta["momentum_type"], "rsi_vwap")
}

func TestMomentumGuards(t *testing.T) {
	strat := newMomentum(t)
	inSession := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

	// Ensure insufficient history yields no signal.
	short := pullbackHistory(inSession)[20:]
	signal, err := strat.OnCandle(&short[len(short)-1], short)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure an overheated rising series yields no signal.
	trending := risingHistory(60, inSession)
	signal, err = strat.OnCandle(&trending[len(trending)-1], trending)
	assert.NoError(t, err)
	assert.Nil(t, signal)

	// Ensure candles outside the trading session yield no signal.
	outside := time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC)
	history := pullbackHistory(outside)
	signal, err = strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}
