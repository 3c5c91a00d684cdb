package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

const (
	// VolumeRangeBreakoutName is the registered name of the volume range
	// breakout strategy.
	VolumeRangeBreakoutName = "volume_range_breakout"

	// rangeATRPeriod is the ATR period backing the volatility filter.
	rangeATRPeriod = 14
)

// VolumeRangeBreakout trades range breakouts confirmed by elevated volume,
// filtered by range size and ATR volatility.
type VolumeRangeBreakout struct {
	*Base
	lookback         int
	volumeThreshold  float64
	minRangePct      float64
	volatilityFilter float64
}

// NewVolumeRangeBreakout initializes a volume range breakout strategy.
func NewVolumeRangeBreakout(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	err = base.SetSession(defaultSessionStart, defaultSessionEnd)
	if err != nil {
		return nil, err
	}

	return &VolumeRangeBreakout{
		Base:             base,
		lookback:         cfg.Params.Int("lookback", 20),
		volumeThreshold:  cfg.Params.Float("volume_threshold", 1.5),
		minRangePct:      cfg.Params.Float("min_range_pct", 0.3),
		volatilityFilter: cfg.Params.Float("volatility_filter", 2.5),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *VolumeRangeBreakout) LookbackBars() int {
	return 50
}

// OnCandle evaluates the provided candle for volume confirmed range
// breakouts.
func (s *VolumeRangeBreakout) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if len(history) < 50 {
		return nil, nil
	}

	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	closes := indicator.Closes(history)
	highs := indicator.Highs(history)
	lows := indicator.Lows(history)
	volumes := indicator.Volumes(history)

	rangeHigh := indicator.RollingMax(highs, s.lookback)
	rangeLow := indicator.RollingMin(lows, s.lookback)
	avgVolume := indicator.SMA(volumes, s.lookback)
	atr := indicator.ATR(highs, lows, closes, rangeATRPeriod)

	size := len(closes)
	volatility := make([]float64, size)
	for idx := 0; idx < size; idx++ {
		volatility[idx] = atr[idx] / closes[idx] * 100
	}

	if math.IsNaN(rangeHigh[size-1]) || math.IsNaN(avgVolume[size-1]) || math.IsNaN(volatility[size-1]) {
		return nil, nil
	}

	currClose := candle.Close
	currVolume := candle.Volume
	prevClose := closes[size-2]
	prevRangeHigh := rangeHigh[size-2]
	prevRangeLow := rangeLow[size-2]
	currVolatility := volatility[size-1]

	rangeSize := (prevRangeHigh - prevRangeLow) / prevRangeLow * 100
	volumeOK := currVolume > avgVolume[size-1]*s.volumeThreshold
	volatilityOK := currVolatility < s.volatilityFilter

	breakoutLong := currClose > prevRangeHigh && prevClose <= prevRangeHigh
	breakoutShort := currClose < prevRangeLow && prevClose >= prevRangeLow

	var side shared.Side
	switch {
	case breakoutLong && volumeOK && rangeSize > s.minRangePct && volatilityOK:
		side = shared.Long
	case breakoutShort && volumeOK && rangeSize > s.minRangePct && volatilityOK:
		side = shared.Short
	default:
		return nil, nil
	}

	var volumeRatio float64
	if avgVolume[size-1] > 0 {
		volumeRatio = currVolume / avgVolume[size-1]
	}

	return shared.NewSignal(side, currClose, 0.7, map[string]string{
		"range_high":     metaFloat(prevRangeHigh),
		"range_low":      metaFloat(prevRangeLow),
		"range_size_pct": metaFloat(rangeSize),
		"volume_ratio":   metaFloat(volumeRatio),
		"volatility_pct": metaFloat(currVolatility),
		"in_session":     metaBool(true),
		"breakout_type":  "range_breakout",
	}), nil
}
