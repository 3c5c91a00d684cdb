package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dnldd/signal/shared"
)

const (
	// SQL statements.
	activeStrategiesSQL = "SELECT id::text, name, version, params, symbols, timeframes, " +
		"mode, init_periods FROM strategies WHERE is_live = true AND status = 'active' " +
		"AND mode = $1"
	latestTimestampSQL = "SELECT max(o.ts) FROM ohlcs o " +
		"JOIN instruments i ON i.id = o.instrument_id " +
		"WHERE i.symbol = $1 AND o.timeframe = $2"
)

// ActiveStrategies fetches all active strategy rows for the provided trading
// mode.
func (c *Catalog) ActiveStrategies(ctx context.Context, mode shared.TradingMode) ([]shared.StrategyConfig, error) {
	rows, err := c.pool.Query(ctx, activeStrategiesSQL, mode.String())
	if err != nil {
		return nil, fmt.Errorf("fetching active strategies: %w", err)
	}
	defer rows.Close()

	var configs []shared.StrategyConfig
	for rows.Next() {
		cfg := shared.StrategyConfig{
			IsLive: true,
			Status: "active",
		}

		var rawParams []byte
		var timeframes []string
		err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.Version, &rawParams, &cfg.Symbols,
			&timeframes, &cfg.Mode, &cfg.InitPeriods)
		if err != nil {
			return nil, fmt.Errorf("scanning strategy row: %w", err)
		}

		if len(rawParams) > 0 {
			err = json.Unmarshal(rawParams, &cfg.Params)
			if err != nil {
				return nil, fmt.Errorf("unmarshalling params for strategy %s: %w", cfg.ID, err)
			}
		}

		cfg.Timeframes = shared.ParseTimeframes(timeframes)
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating strategy rows: %w", err)
	}

	return configs, nil
}

// LatestTimestamp fetches the most recent candle timestamp known to the
// catalog for the provided symbol and timeframe. A zero time is returned when
// the catalog has no bars for the pair.
func (c *Catalog) LatestTimestamp(ctx context.Context, symbol string, timeframe shared.Timeframe) (time.Time, error) {
	var latest *time.Time
	err := c.pool.QueryRow(ctx, latestTimestampSQL, symbol, timeframe.String()).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching latest %s %s timestamp: %w", symbol, timeframe, err)
	}

	if latest == nil {
		return time.Time{}, nil
	}

	return latest.UTC(), nil
}
