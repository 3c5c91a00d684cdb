package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

const (
	// LowVolMomentumName is the registered name of the low volatility
	// momentum strategy.
	LowVolMomentumName = "low_vol_momentum"

	// Volatility regimes classified from the ATR percentile.
	lowRegime     = "low"
	midRegime     = "mid"
	highRegime    = "high"
	unknownRegime = "unknown"

	// highVolThreshold is the ATR percentile above which volatility is
	// classified as high.
	highVolThreshold = 70

	// momentumEntryThreshold is the minimum absolute momentum for an entry.
	momentumEntryThreshold = 0.01

	// barsPerHour is the number of fifteen minute candles in an hour.
	barsPerHour = 4
)

// LowVolMomentum enters on sustained momentum during low volatility regimes
// and exits on stop loss, maximum hold time or a regime change.
type LowVolMomentum struct {
	*Base
	atrPeriod                 int
	lookbackDays              int
	lowVolThreshold           float64
	momentumLookback          int
	stopLossPct               float64
	maxHoldHours              int
	exitOnRegimeChange        bool
	requireCandleConfirmation bool
}

// NewLowVolMomentum initializes a low volatility momentum strategy.
func NewLowVolMomentum(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	return &LowVolMomentum{
		Base:                      base,
		atrPeriod:                 cfg.Params.Int("atr_period", 14),
		lookbackDays:              cfg.Params.Int("lookback_days", 30),
		lowVolThreshold:           cfg.Params.Float("low_vol_threshold", 40),
		momentumLookback:          cfg.Params.Int("momentum_lookback", 48),
		stopLossPct:               cfg.Params.Float("stop_loss_pct", 2.0),
		maxHoldHours:              cfg.Params.Int("max_hold_hours", 48),
		exitOnRegimeChange:        cfg.Params.Bool("exit_on_regime_change", true),
		requireCandleConfirmation: cfg.Params.Bool("require_candle_confirmation", false),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *LowVolMomentum) LookbackBars() int {
	return s.lookbackDays * 24 * barsPerHour
}

// volRegime classifies the current volatility regime from the percentile of
// the latest ATR against its recent history.
func (s *LowVolMomentum) volRegime(history []shared.Candle) (string, float64) {
	if len(history) < s.atrPeriod+10 {
		return unknownRegime, 50
	}

	closes := indicator.Closes(history)
	ranges := indicator.TrueRanges(indicator.Highs(history), indicator.Lows(history), closes)
	atr := indicator.SMA(ranges, s.atrPeriod)

	atrPct := make([]float64, len(atr))
	for idx := range atr {
		atrPct[idx] = atr[idx] / closes[idx] * 100
	}

	lookbackPeriods := s.lookbackDays * 24 * barsPerHour
	if len(atrPct) < lookbackPeriods {
		return unknownRegime, 50
	}

	current := atrPct[len(atrPct)-1]
	if math.IsNaN(current) {
		return unknownRegime, 50
	}

	window := atrPct[len(atrPct)-lookbackPeriods:]
	var usable int
	for idx := range window {
		if !math.IsNaN(window[idx]) {
			usable++
		}
	}
	if usable < 10 {
		return unknownRegime, 50
	}

	percentile := indicator.PercentileRank(window, current)
	switch {
	case percentile < s.lowVolThreshold:
		return lowRegime, percentile
	case percentile > highVolThreshold:
		return highRegime, percentile
	default:
		return midRegime, percentile
	}
}

// OnCandle evaluates the provided candle for momentum entries in low
// volatility regimes and for position exits.
func (s *LowVolMomentum) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	currClose := candle.Close
	if position := s.Position(candle); position != nil {
		pnlPct := position.PNLPercent(currClose)

		if pnlPct <= -s.stopLossPct {
			side := position.Side.Opposite()
			entryPrice := position.EntryPrice
			s.ClosePosition(candle)

			return shared.NewSignal(side, currClose, 0.6, map[string]string{
				"exit_reason":   StopLossExit,
				"entry_price":   metaFloat(entryPrice),
				"pnl_pct":       metaFloat(pnlPct),
				"strategy_type": LowVolMomentumName,
			}), nil
		}

		if !candle.Timestamp.IsZero() && !position.EntryTime.IsZero() {
			heldHours := candle.Timestamp.Sub(position.EntryTime).Hours()
			if heldHours >= float64(s.maxHoldHours) {
				side := position.Side.Opposite()
				entryPrice := position.EntryPrice
				s.ClosePosition(candle)

				return shared.NewSignal(side, currClose, 0.55, map[string]string{
					"exit_reason":   MaxHoldExit,
					"held_hours":    metaFloat(heldHours),
					"entry_price":   metaFloat(entryPrice),
					"pnl_pct":       metaFloat(pnlPct),
					"strategy_type": LowVolMomentumName,
				}), nil
			}
		}

		if s.exitOnRegimeChange {
			regime, atrPercentile := s.volRegime(history)
			if regime != unknownRegime && regime != position.EntryRegime {
				side := position.Side.Opposite()
				entryPrice := position.EntryPrice
				s.ClosePosition(candle)

				return shared.NewSignal(side, currClose, 0.55, map[string]string{
					"exit_reason":    RegimeChangeExit,
					"atr_percentile": metaFloat(atrPercentile),
					"entry_price":    metaFloat(entryPrice),
					"pnl_pct":        metaFloat(pnlPct),
					"strategy_type":  LowVolMomentumName,
				}), nil
			}
		}

		return nil, nil
	}

	if len(history) < s.atrPeriod*2 {
		return nil, nil
	}

	regime, atrPercentile := s.volRegime(history)
	if regime != lowRegime {
		return nil, nil
	}

	momentumPeriods := s.momentumLookback * barsPerHour
	if len(history) < momentumPeriods {
		return nil, nil
	}

	closes := indicator.Closes(history)
	reference := closes[len(closes)-momentumPeriods]
	momentum := (closes[len(closes)-1] - reference) / reference

	longCond := momentum > momentumEntryThreshold
	shortCond := momentum < -momentumEntryThreshold
	if s.requireCandleConfirmation {
		longCond = longCond && currClose > candle.Open
		shortCond = shortCond && currClose < candle.Open
	}

	var side shared.Side
	switch {
	case longCond:
		side = shared.Long
	case shortCond:
		side = shared.Short
	default:
		return nil, nil
	}

	s.OpenPosition(candle, side, currClose, regime)

	confidence := math.Min(0.5+math.Abs(momentum)*10, 0.9)
	return shared.NewSignal(side, currClose, confidence, map[string]string{
		"momentum":                metaFloat(momentum),
		"atr_percentile":          metaFloat(atrPercentile),
		"regime":                  regime,
		"momentum_lookback_hours": metaInt(s.momentumLookback),
		"strategy_type":           LowVolMomentumName,
		"stop_loss_pct":           metaFloat(s.stopLossPct),
		"max_hold_hours":          metaInt(s.maxHoldHours),
		"exit_on_regime_change":   metaBool(s.exitOnRegimeChange),
	}), nil
}
