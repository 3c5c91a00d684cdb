package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

const (
	// ATRBreakoutName is the registered name of the ATR breakout strategy.
	ATRBreakoutName = "atr_breakout"

	// atrBandOffset widens the rolling extreme bands by a fraction of ATR.
	atrBandOffset = 0.5
)

// ATRBreakout trades crossovers of ATR widened rolling extreme bands in the
// direction of the EMA trend.
type ATRBreakout struct {
	*Base
	atrLength int
	emaFilter int
}

// NewATRBreakout initializes an ATR breakout strategy.
func NewATRBreakout(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	err = base.SetSession(defaultSessionStart, defaultSessionEnd)
	if err != nil {
		return nil, err
	}

	return &ATRBreakout{
		Base:      base,
		atrLength: cfg.Params.Int("atr_length", 14),
		emaFilter: cfg.Params.Int("ema_filter", 50),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *ATRBreakout) LookbackBars() int {
	return 100
}

// OnCandle evaluates the provided candle for trend aligned band breakouts.
func (s *ATRBreakout) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if len(history) < 100 {
		return nil, nil
	}

	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	closes := indicator.Closes(history)
	highs := indicator.Highs(history)
	lows := indicator.Lows(history)

	atr := indicator.ATR(highs, lows, closes, s.atrLength)
	ema := indicator.EMA(closes, s.emaFilter)
	highestHigh := indicator.RollingMax(highs, s.atrLength)
	lowestLow := indicator.RollingMin(lows, s.atrLength)

	size := len(closes)
	upperBand := make([]float64, size)
	lowerBand := make([]float64, size)
	for idx := 0; idx < size; idx++ {
		upperBand[idx] = highestHigh[idx] + atr[idx]*atrBandOffset
		lowerBand[idx] = lowestLow[idx] - atr[idx]*atrBandOffset
	}

	currEMA := ema[size-1]
	if math.IsNaN(upperBand[size-1]) || math.IsNaN(currEMA) {
		return nil, nil
	}

	currClose := candle.Close
	prevClose := closes[size-2]
	prevUpperBand := upperBand[size-2]
	prevLowerBand := lowerBand[size-2]

	breakoutLong := currClose > prevUpperBand && prevClose <= prevUpperBand
	breakoutShort := currClose < prevLowerBand && prevClose >= prevLowerBand

	var side shared.Side
	switch {
	case breakoutLong && currClose > currEMA:
		side = shared.Long
	case breakoutShort && currClose < currEMA:
		side = shared.Short
	default:
		return nil, nil
	}

	return shared.NewSignal(side, currClose, 0.7, map[string]string{
		"upper_band":    metaFloat(prevUpperBand),
		"lower_band":    metaFloat(prevLowerBand),
		"ema_filter":    metaFloat(currEMA),
		"atr":           metaFloat(atr[size-1]),
		"in_session":    metaBool(true),
		"breakout_type": "atr_breakout",
		"trend_aligned": metaBool(true),
	}), nil
}
