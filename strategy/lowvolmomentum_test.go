package strategy

import (
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/peterldowns/testy/assert"
)

// lowVolEntryHistory builds a volatility contraction: a long high volatility
// stretch followed by a quiet stretch ending in a gentle four bar advance.
func lowVolEntryHistory(end time.Time) []shared.Candle {
	history := make([]shared.Candle, 0, 200)
	for idx := 0; idx < 200; idx++ {
		candle := shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FifteenMinute,
			Timestamp: end.Add(-time.Duration(199-idx) * 15 * time.Minute),
			Volume:    1000,
		}

		switch {
		case idx < 150:
			candle.Open, candle.High, candle.Low, candle.Close = 100, 105, 95, 100
		case idx < 197:
			candle.Open, candle.High, candle.Low, candle.Close = 100, 100.5, 99.5, 100
		case idx == 197:
			candle.Open, candle.High, candle.Low, candle.Close = 100, 101, 100, 100.5
		case idx == 198:
			candle.Open, candle.High, candle.Low, candle.Close = 100.5, 101.5, 100.5, 101
		default:
			candle.Open, candle.High, candle.Low, candle.Close = 101, 102, 101, 101.5
		}

		history = append(history, candle)
	}

	return history
}

// volSpikeHistory builds a volatility expansion: a long quiet stretch followed
// by a high volatility stretch.
func volSpikeHistory(end time.Time) []shared.Candle {
	history := make([]shared.Candle, 0, 200)
	for idx := 0; idx < 200; idx++ {
		candle := shared.Candle{
			Symbol:    "BTC-USD",
			Timeframe: shared.FifteenMinute,
			Timestamp: end.Add(-time.Duration(199-idx) * 15 * time.Minute),
			Open:      100,
			Close:     100,
			Volume:    1000,
		}

		if idx < 150 {
			candle.High, candle.Low = 100.5, 99.5
		} else {
			candle.High, candle.Low = 105, 95
		}

		history = append(history, candle)
	}

	return history
}

func newLowVolMomentum(t *testing.T) *LowVolMomentum {
	instance, err := NewLowVolMomentum(&InstanceConfig{
		ID:      "str-6",
		Name:    LowVolMomentumName,
		Version: "1.0.0",
		Symbols: []string{"BTC-USD"},
		Params: Params{
			"lookback_days":     1,
			"momentum_lookback": 1,
		},
	})
	assert.NoError(t, err)

	return instance.(*LowVolMomentum)
}

func TestLowVolMomentumEntry(t *testing.T) {
	strat := newLowVolMomentum(t)
	end := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := lowVolEntryHistory(end)
	candle := &history[len(history)-1]

	// Ensure sustained momentum in a low volatility regime enters long.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Long)
	assert.Equal(t, signal.Price, candle.Close)
	assert.Equal(t, signal.Confidence, 0.65)
	assert.Equal(t, signal.Meta["regime"], lowRegime)

	position := strat.Position(candle)
	assert.NotNil(t, position)
	assert.Equal(t, position.EntryRegime, lowRegime)

	// Ensure no additional entries are generated while the position is open.
	signal, err = strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.Nil(t, signal)
}

func TestLowVolMomentumStopLossExit(t *testing.T) {
	strat := newLowVolMomentum(t)
	end := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := lowVolEntryHistory(end)

	signal, err := strat.OnCandle(&history[len(history)-1], history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)

	// Ensure a drawdown beyond the stop loss exits with the opposite side.
	next := shared.Candle{
		Symbol:    "BTC-USD",
		Timeframe: shared.FifteenMinute,
		Timestamp: end.Add(15 * time.Minute),
		Open:      101.5,
		High:      101.5,
		Low:       99,
		Close:     99.3,
		Volume:    1000,
	}
	signal, err = strat.OnCandle(&next, append(history, next))
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Short)
	assert.Equal(t, signal.Confidence, 0.6)
	assert.Equal(t, signal.Meta["exit_reason"], StopLossExit)
	assert.Equal(t, signal.Meta["entry_price"], "101.5")
	assert.Nil(t, strat.Position(&next))
}

func TestLowVolMomentumMaxHoldExit(t *testing.T) {
	strat := newLowVolMomentum(t)
	end := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

	entry := shared.Candle{
		Symbol:    "BTC-USD",
		Timeframe: shared.FifteenMinute,
		Timestamp: end.Add(-49 * time.Hour),
		Close:     100,
	}
	strat.OpenPosition(&entry, shared.Long, 100, lowRegime)

	// Ensure a position held past the maximum hold time exits.
	next := shared.Candle{
		Symbol:    "BTC-USD",
		Timeframe: shared.FifteenMinute,
		Timestamp: end,
		Open:      100,
		High:      101,
		Low:       100,
		Close:     100.5,
		Volume:    1000,
	}
	signal, err := strat.OnCandle(&next, []shared.Candle{next})
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Short)
	assert.Equal(t, signal.Confidence, 0.55)
	assert.Equal(t, signal.Meta["exit_reason"], MaxHoldExit)
	assert.Nil(t, strat.Position(&next))
}

func TestLowVolMomentumRegimeChangeExit(t *testing.T) {
	strat := newLowVolMomentum(t)
	end := time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)
	history := volSpikeHistory(end)
	candle := &history[len(history)-1]

	entry := shared.Candle{
		Symbol:    "BTC-USD",
		Timeframe: shared.FifteenMinute,
		Timestamp: end.Add(-time.Hour),
		Close:     100,
	}
	strat.OpenPosition(&entry, shared.Long, 100, lowRegime)

	// Ensure a volatility regime change away from the entry regime exits.
	signal, err := strat.OnCandle(candle, history)
	assert.NoError(t, err)
	assert.NotNil(t, signal)
	assert.Equal(t, signal.Side, shared.Short)
	assert.Equal(t, signal.Confidence, 0.55)
	assert.Equal(t, signal.Meta["exit_reason"], RegimeChangeExit)
	assert.Nil(t, strat.Position(candle))
}
