package catalog

import (
	"context"
	"fmt"

	"github.com/dnldd/signal/shared"
)

const (
	// SQL statements.
	fetchHistorySQL = "SELECT o.ts, o.open, o.high, o.low, o.close, o.volume " +
		"FROM ohlcs o JOIN instruments i ON i.id = o.instrument_id " +
		"WHERE i.symbol = $1 AND o.timeframe = $2 ORDER BY o.ts DESC LIMIT $3"
	fetchImportedHistorySQL = "SELECT o.ts, o.open, o.high, o.low, o.close, o.volume " +
		"FROM ohlc_imports o JOIN instruments i ON i.id = o.instrument_id " +
		"WHERE i.symbol = $1 AND o.timeframe = $2 ORDER BY o.ts DESC LIMIT $3"
)

// FetchHistory fetches up to bars recent candles for the provided symbol and
// timeframe, sorted ascending by timestamp. Imported history reads fall back
// to live capture when no imported rows exist.
func (c *Catalog) FetchHistory(ctx context.Context, symbol string, timeframe shared.Timeframe, bars int, source shared.DataSource) ([]shared.Candle, error) {
	query := fetchHistorySQL
	if source == shared.ImportedSource {
		query = fetchImportedHistorySQL
	}

	candles, err := c.fetchCandles(ctx, query, symbol, timeframe, bars)
	if err != nil {
		return nil, err
	}

	if len(candles) == 0 && source == shared.ImportedSource {
		candles, err = c.fetchCandles(ctx, fetchHistorySQL, symbol, timeframe, bars)
		if err != nil {
			return nil, err
		}
	}

	return candles, nil
}

// fetchCandles runs the provided history query and returns its rows in
// chronological order.
func (c *Catalog) fetchCandles(ctx context.Context, query string, symbol string, timeframe shared.Timeframe, bars int) ([]shared.Candle, error) {
	rows, err := c.pool.Query(ctx, query, symbol, timeframe.String(), bars)
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s history: %w", symbol, timeframe, err)
	}
	defer rows.Close()

	var candles []shared.Candle
	for rows.Next() {
		candle := shared.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
		}

		err := rows.Scan(&candle.Timestamp, &candle.Open, &candle.High, &candle.Low,
			&candle.Close, &candle.Volume)
		if err != nil {
			return nil, fmt.Errorf("scanning %s %s history: %w", symbol, timeframe, err)
		}

		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s %s history: %w", symbol, timeframe, err)
	}

	// Rows arrive newest first, flip them chronological.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}

	return candles, nil
}
