package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dnldd/signal/shared"
	"github.com/jackc/pgx/v5"
)

const (
	// SQL statements.
	findInstrumentSQL = "SELECT id FROM instruments WHERE symbol = $1"
	persistSignalSQL  = "INSERT INTO signals (exchange_id, instrument_id, strategy_id, " +
		"strategy_version, signal_type, signal_value, confidence, payload, mode, " +
		"idempotency_key, correlation_id) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"
)

// PersistSignal stores the provided signal to the catalog as a single atomic
// write. Signals for symbols without a catalog instrument are dropped with a
// warning.
func (c *Catalog) PersistSignal(ctx context.Context, signal *shared.Signal) (bool, error) {
	var instrumentID int64
	err := c.pool.QueryRow(ctx, findInstrumentSQL, signal.Symbol).Scan(&instrumentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.cfg.Logger.Warn().Str("symbol", signal.Symbol).
				Msg("no instrument for symbol, dropping signal")
			return false, nil
		}

		return false, fmt.Errorf("resolving instrument for %s: %w", signal.Symbol, err)
	}

	payload, err := json.Marshal(signal.Meta)
	if err != nil {
		return false, fmt.Errorf("marshalling signal payload: %w", err)
	}

	mode := signal.Meta["mode"]
	if mode == "" {
		mode = shared.LiveMode.String()
	}

	_, err = c.pool.Exec(ctx, persistSignalSQL, instrumentID, signal.StrategyID,
		signal.StrategyVersion, strings.ToUpper(signal.Side.String()), signal.Price,
		signal.Confidence, payload, mode, signal.IdempotencyKey, signal.CorrelationID)
	if err != nil {
		return false, fmt.Errorf("persisting signal %s: %w", signal.IdempotencyKey, err)
	}

	return true, nil
}
