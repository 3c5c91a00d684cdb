package shared

import (
	"context"
	"time"
)

// HistoryFetcher defines the requirements for fetching recent candle history.
type HistoryFetcher interface {
	// FetchHistory fetches up to bars recent candles for the provided symbol
	// and timeframe, sorted ascending by timestamp.
	FetchHistory(ctx context.Context, symbol string, timeframe Timeframe, bars int, source DataSource) ([]Candle, error)
}

// SignalStorer defines the requirements for persisting generated signals.
type SignalStorer interface {
	// PersistSignal stores the provided signal. It reports false without an
	// error when the signal's symbol has no catalog instrument and the
	// signal is dropped.
	PersistSignal(ctx context.Context, signal *Signal) (bool, error)
}

// StrategyCatalog defines the requirements for reading strategy
// configurations.
type StrategyCatalog interface {
	// ActiveStrategies fetches all active strategy rows for the provided
	// trading mode.
	ActiveStrategies(ctx context.Context, mode TradingMode) ([]StrategyConfig, error)
	// LatestTimestamp fetches the most recent candle timestamp known to the
	// catalog for the provided symbol and timeframe.
	LatestTimestamp(ctx context.Context, symbol string, timeframe Timeframe) (time.Time, error)
}
