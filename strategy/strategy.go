package strategy

import (
	"time"

	"github.com/dnldd/signal/shared"
)

// InstanceConfig represents the configuration used to create a strategy
// instance from its catalog row.
type InstanceConfig struct {
	// ID is the catalog identifier of the strategy row.
	ID string
	// Name is the registered strategy name.
	Name string
	// Version is the strategy version.
	Version string
	// Symbols are the symbols the strategy evaluates.
	Symbols []string
	// Timeframes are the candle timeframes the strategy evaluates.
	Timeframes []shared.Timeframe
	// Params are the strategy parameters.
	Params Params
}

// Strategy defines the requirements for evaluating candles into signals.
type Strategy interface {
	// OnCandle evaluates the provided candle against recent history, with
	// the candle as the final history entry, and returns a signal when an
	// entry or exit condition is met.
	OnCandle(candle *shared.Candle, history []shared.Candle) (*shared.Signal, error)
	// LookbackBars returns the number of history bars the strategy needs
	// for evaluation.
	LookbackBars() int
	// InSession checks whether the provided instant falls within the
	// strategy's session window.
	InSession(ts time.Time) bool
}
