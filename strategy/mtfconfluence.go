package strategy

import (
	"math"

	"github.com/dnldd/signal/indicator"
	"github.com/dnldd/signal/shared"
)

const (
	// MTFConfluenceName is the registered name of the multi timeframe
	// confluence strategy.
	MTFConfluenceName = "mtf_confluence"

	// Default trading session bounds in UTC.
	defaultSessionStart = "14:00"
	defaultSessionEnd   = "18:00"

	// emaProximityBuffer is the tolerance for treating price as near the
	// low timeframe EMA.
	emaProximityBuffer = 0.001

	// htfMultiplier compresses low timeframe candles into higher timeframe
	// groups.
	htfMultiplier = 3

	// mtfStopLossPercent is the stop distance from the entry price.
	mtfStopLossPercent = 0.005
)

// MTFConfluence trades low timeframe pullbacks in the direction of the
// higher timeframe trend, compressing candles locally in place of a second
// upstream subscription.
type MTFConfluence struct {
	*Base
	htfEMALen   int
	htfRSILen   int
	htfRSIMid   float64
	ltfEMALen   int
	pullbackPct float64
}

// NewMTFConfluence initializes a multi timeframe confluence strategy.
func NewMTFConfluence(cfg *InstanceConfig) (Strategy, error) {
	base, err := NewBase(cfg)
	if err != nil {
		return nil, err
	}

	err = base.SetSession(defaultSessionStart, defaultSessionEnd)
	if err != nil {
		return nil, err
	}

	return &MTFConfluence{
		Base:        base,
		htfEMALen:   cfg.Params.Int("htf_ema_len", 50),
		htfRSILen:   cfg.Params.Int("htf_rsi_len", 14),
		htfRSIMid:   float64(cfg.Params.Int("htf_rsi_mid", 50)),
		ltfEMALen:   cfg.Params.Int("ltf_ema_len", 20),
		pullbackPct: cfg.Params.Float("pullback_pct", 0.3),
	}, nil
}

// LookbackBars returns the number of history bars needed for evaluation.
func (s *MTFConfluence) LookbackBars() int {
	return 200
}

// OnCandle evaluates the provided candle for trend aligned pullback entries
// and stop loss or trend reversal exits.
func (s *MTFConfluence) OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error) {
	if len(history) < 200 {
		return nil, nil
	}

	if !s.InSession(candle.Timestamp) {
		return nil, nil
	}

	htf := indicator.Resample(history, htfMultiplier)
	htfCloses := indicator.Closes(htf)
	if len(htfCloses) < s.htfEMALen+2 {
		return nil, nil
	}

	htfEMA := indicator.EMA(htfCloses, s.htfEMALen)
	htfRSI := indicator.RSI(htfCloses, s.htfRSILen)
	ltfEMA := indicator.EMA(indicator.Closes(history), s.ltfEMALen)

	currClose := candle.Close
	currOpen := candle.Open
	currLTFEMA := ltfEMA[len(ltfEMA)-1]

	// Read the last completed higher timeframe bar, skipping the partial
	// tail group.
	htfClose := htfCloses[len(htfCloses)-2]
	htfEMAVal := htfEMA[len(htfEMA)-2]
	htfRSIVal := htfRSI[len(htfRSI)-2]

	if math.IsNaN(htfEMAVal) || math.IsNaN(htfRSIVal) || math.IsNaN(currLTFEMA) {
		return nil, nil
	}

	htfBullish := htfClose > htfEMAVal && htfRSIVal > s.htfRSIMid
	htfBearish := htfClose < htfEMAVal && htfRSIVal < s.htfRSIMid

	if position := s.Position(candle); position != nil {
		var stopLossHit, trendReversed bool
		switch position.Side {
		case shared.Long:
			stopLossHit = currClose < position.EntryPrice*(1-mtfStopLossPercent)
			trendReversed = htfBearish
		case shared.Short:
			stopLossHit = currClose > position.EntryPrice*(1+mtfStopLossPercent)
			trendReversed = htfBullish
		}

		if stopLossHit || trendReversed {
			reason := TrendReversalExit
			if stopLossHit {
				reason = StopLossExit
			}

			entryPrice := position.EntryPrice
			side := position.Side.Opposite()
			s.ClosePosition(candle)

			return shared.NewSignal(side, currClose, 0.7, map[string]string{
				"exit_reason": reason,
				"htf_ema":     metaFloat(htfEMAVal),
				"htf_rsi":     metaFloat(htfRSIVal),
				"entry_price": metaFloat(entryPrice),
			}), nil
		}

		return nil, nil
	}

	if !htfBullish && !htfBearish {
		return nil, nil
	}

	highs := indicator.Highs(history)
	lows := indicator.Lows(history)
	recentHigh := maxOf(highs[len(highs)-5:])
	recentLow := minOf(lows[len(lows)-5:])

	pullbackThreshold := s.pullbackPct / 100

	priceNearEMALong := currClose < currLTFEMA*(1+emaProximityBuffer)
	breakoutAboveHigh := currClose > recentHigh*(1-pullbackThreshold)
	pullbackLong := (priceNearEMALong || breakoutAboveHigh) && currClose > currOpen

	priceNearEMAShort := currClose > currLTFEMA*(1-emaProximityBuffer)
	breakdownBelowLow := currClose < recentLow*(1+pullbackThreshold)
	pullbackShort := (priceNearEMAShort || breakdownBelowLow) && currClose < currOpen

	longCond := htfBullish && pullbackLong && currClose > currLTFEMA
	shortCond := htfBearish && pullbackShort && currClose < currLTFEMA

	var side shared.Side
	switch {
	case longCond:
		side = shared.Long
	case shortCond:
		side = shared.Short
	default:
		return nil, nil
	}

	s.OpenPosition(candle, side, currClose, "")

	return shared.NewSignal(side, currClose, 0.7, map[string]string{
		"htf_ema":    metaFloat(htfEMAVal),
		"htf_rsi":    metaFloat(htfRSIVal),
		"ltf_ema":    metaFloat(currLTFEMA),
		"pullback":   metaBool(true),
		"in_session": metaBool(true),
		"session":    defaultSessionStart + "-" + defaultSessionEnd + " UTC",
		"entry":      metaBool(true),
	}), nil
}

// maxOf returns the largest value in the provided series.
func maxOf(series []float64) float64 {
	max := series[0]
	for idx := 1; idx < len(series); idx++ {
		if series[idx] > max {
			max = series[idx]
		}
	}

	return max
}

// minOf returns the smallest value in the provided series.
func minOf(series []float64) float64 {
	min := series[0]
	for idx := 1; idx < len(series); idx++ {
		if series[idx] < min {
			min = series[idx]
		}
	}

	return min
}
