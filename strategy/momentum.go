package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

// MomentumName is the registered name of the momentum strategy.
const MomentumName = "momentum"

// Momentum trades mean reversion around the session VWAP, gated by the
// relative strength index and candle direction.
type Momentum struct {
	*Base
	rsiLength     int
	rsiOverbought float64
	rsiOversold   float64
	vwapDeviation float64
}

// NewMomentum initializes a momentum strategy.
func NewMomentum(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	err = base.SetSession(defaultSessionStart, defaultSessionEnd)
	if err != nil {
		return nil, err
	}

	return &Momentum{
		Base:          base,
		rsiLength:     cfg.Params.Int("rsi_length", 14),
		rsiOverbought: float64(cfg.Params.Int("rsi_overbought", 65)),
		rsiOversold:   float64(cfg.Params.Int("rsi_oversold", 35)),
		vwapDeviation: cfg.Params.Float("vwap_deviation", 0.5),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *Momentum) LookbackBars() int {
	return 50
}

// OnCandle evaluates the provided candle for RSI gated VWAP band entries.
func (s *Momentum) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if len(history) < 50 {
		return nil, nil
	}

	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	closes := indicator.Closes(history)
	rsi := indicator.RSI(closes, s.rsiLength)

	vwapSeries := indicator.VWAP(history)
	vwap := vwapSeries[len(vwapSeries)-1]
	vwapUpper := vwap * (1 + s.vwapDeviation/100)
	vwapLower := vwap * (1 - s.vwapDeviation/100)

	currRSI := rsi[len(rsi)-1]
	if math.IsNaN(currRSI) || vwap == 0 {
		return nil, nil
	}

	currClose := candle.Close
	currOpen := candle.Open

	longCond := currClose > vwapLower && currRSI > s.rsiOversold &&
		currRSI < 50 && currClose > currOpen
	shortCond := currClose < vwapUpper && currRSI < s.rsiOverbought &&
		currRSI > 50 && currClose < currOpen

	var side shared.Side
	switch {
	case longCond:
		side = shared.Long
	case shortCond:
		side = shared.Short
	default:
		return nil, nil
	}

	return shared.NewSignal(side, currClose, 0.65, map[string]string{
		"rsi":           metaFloat(currRSI),
		"vwap":          metaFloat(vwap),
		"vwap_upper":    metaFloat(vwapUpper),
		"vwap_lower":    metaFloat(vwapLower),
		"in_session":    metaBool(true),
		"momentum_type": "rsi_vwap",
	}), nil
}
