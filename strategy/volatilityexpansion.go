package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

const (
	// VolatilityExpansionName is the registered name of the volatility
	// expansion strategy.
	VolatilityExpansionName = "volatility_expansion"

	// maxSqueezeLookback bounds the consecutive squeeze bar count.
	maxSqueezeLookback = 20
)

// VolatilityExpansion trades breakouts out of low volatility squeezes,
// detected when the Bollinger bands compress inside the Keltner channel.
type VolatilityExpansion struct {
	*Base
	keltnerLen     int
	atrMult        float64
	bbLen          int
	bbMult         float64
	minSqueezeBars int
}

// NewVolatilityExpansion initializes a volatility expansion strategy.
func NewVolatilityExpansion(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	err = base.SetSession(defaultSessionStart, defaultSessionEnd)
	if err != nil {
		return nil, err
	}

	return &VolatilityExpansion{
		Base:           base,
		keltnerLen:     cfg.Params.Int("keltner_len", 20),
		atrMult:        cfg.Params.Float("atr_mult", 2.0),
		bbLen:          cfg.Params.Int("bb_len", 20),
		bbMult:         cfg.Params.Float("bb_mult", 2.0),
		minSqueezeBars: cfg.Params.Int("min_squeeze_bars", 3),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *VolatilityExpansion) LookbackBars() int {
	return 50
}

// OnCandle evaluates the provided candle for squeeze breakout entries.
func (s *VolatilityExpansion) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if len(history) < 50 {
		return nil, nil
	}

	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	closes := indicator.Closes(history)
	highs := indicator.Highs(history)
	lows := indicator.Lows(history)

	keltnerBasis := indicator.EMA(closes, s.keltnerLen)
	atr := indicator.ATR(highs, lows, closes, s.keltnerLen)
	bbBasis := indicator.SMA(closes, s.bbLen)
	bbStdev := indicator.StdDev(closes, s.bbLen)

	size := len(closes)
	keltnerUpper := make([]float64, size)
	keltnerLower := make([]float64, size)
	bbUpper := make([]float64, size)
	bbLower := make([]float64, size)
	inSqueeze := make([]bool, size)
	for idx := 0; idx < size; idx++ {
		keltnerUpper[idx] = keltnerBasis[idx] + s.atrMult*atr[idx]
		keltnerLower[idx] = keltnerBasis[idx] - s.atrMult*atr[idx]
		bbUpper[idx] = bbBasis[idx] + s.bbMult*bbStdev[idx]
		bbLower[idx] = bbBasis[idx] - s.bbMult*bbStdev[idx]
		inSqueeze[idx] = bbUpper[idx] < keltnerUpper[idx] && bbLower[idx] > keltnerLower[idx]
	}

	if math.IsNaN(keltnerUpper[size-1]) || math.IsNaN(bbUpper[size-1]) {
		return nil, nil
	}

	// Count consecutive squeeze bars ending at the bar before the breakout
	// candidate.
	var squeezeCount int
	for idx := size - 2; idx >= 0 && size-2-idx < maxSqueezeLookback; idx-- {
		if !inSqueeze[idx] {
			break
		}

		squeezeCount++
	}

	currClose := candle.Close
	prevInSqueeze := inSqueeze[size-2]
	currInSqueeze := inSqueeze[size-1]

	breakoutUp := !currInSqueeze && prevInSqueeze && currClose > keltnerUpper[size-2]
	breakoutDown := !currInSqueeze && prevInSqueeze && currClose < keltnerLower[size-2]

	var side shared.Side
	switch {
	case breakoutUp && squeezeCount >= s.minSqueezeBars:
		side = shared.Long
	case breakoutDown && squeezeCount >= s.minSqueezeBars:
		side = shared.Short
	default:
		return nil, nil
	}

	return shared.NewSignal(side, currClose, 0.75, map[string]string{
		"squeeze_bars":  metaInt(squeezeCount),
		"keltner_upper": metaFloat(keltnerUpper[size-1]),
		"keltner_lower": metaFloat(keltnerLower[size-1]),
		"in_session":    metaBool(true),
		"breakout_type": "volatility_expansion",
	}), nil
}
