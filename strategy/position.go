package strategy

import (
	"time"

	"github.com/dnldd/signal/shared"
)

// Exit reasons attached to exit signal metadata.
const (
	StopLossExit      = "stop_loss"
	MaxHoldExit       = "max_hold"
	RegimeChangeExit  = "regime_change"
	TrendReversalExit = "trend_reversal"
)

// Position represents an open position tracked by a strategy for a symbol.
type Position struct {
	Side        shared.Side
	EntryPrice  float64
	EntryTime   time.Time
	EntryRegime string
}

// PNLPercent returns the percentage change of the position at the provided
// price, signed by the position side.
func (p *Position) PNLPercent(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}

	change := ((price - p.EntryPrice) / p.EntryPrice) * 100
	if p.Side == shared.Short {
		return -change
	}

	return change
}
