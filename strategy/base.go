package strategy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dnldd/signal/shared"
)

// Base carries the identity, session window and position state shared by
// strategy implementations.
type Base struct {
	ID         string
	Name       string
	Version    string
	Symbols    []string
	Timeframes []shared.Timeframe
	Params     Params
	Session    *shared.Session

	positions map[string]*Position
}

// NewBase initializes the common strategy scaffolding from the provided
// configuration, parsing an optional session window from parameters.
func NewBase(cfg *InstanceConfig) (*Base, error) {
	base := &Base{
		ID:         cfg.ID,
		Name:       cfg.Name,
		Version:    cfg.Version,
		Symbols:    cfg.Symbols,
		Timeframes: cfg.Timeframes,
		Params:     cfg.Params,
		positions:  make(map[string]*Position),
	}

	start := cfg.Params.String("session_start", "")
	end := cfg.Params.String("session_end", "")
	if start != "" && end != "" {
		session, err := shared.NewSession(start, end)
		if err != nil {
			return nil, fmt.Errorf("parsing session window: %w", err)
		}

		base.Session = session
	}

	return base, nil
}

// SetSession fixes the session window to the provided bounds.
func (b *Base) SetSession(start string, end string) error {
	session, err := shared.NewSession(start, end)
	if err != nil {
		return fmt.Errorf("parsing session window: %w", err)
	}

	b.Session = session
	return nil
}

// InSession checks whether the provided instant falls within the session
// window. Strategies without a session window accept all instants.
func (b *Base) InSession(ts time.Time) bool {
	if b.Session == nil {
		return true
	}

	return b.Session.InSession(ts)
}

// positionKey resolves the position state key for the provided candle.
func (b *Base) positionKey(candle *shared.Candle) string {
	switch {
	case candle.Symbol != "":
		return candle.Symbol
	case len(b.Symbols) > 0:
		return b.Symbols[0]
	default:
		return "default"
	}
}

// Position fetches the open position for the provided candle's symbol, or
// nil when flat.
func (b *Base) Position(candle *shared.Candle) *Position {
	return b.positions[b.positionKey(candle)]
}

// OpenPosition records an open position for the provided candle's symbol.
func (b *Base) OpenPosition(candle *shared.Candle, side shared.Side, price float64, regime string) {
	b.positions[b.positionKey(candle)] = &Position{
		Side:        side,
		EntryPrice:  price,
		EntryTime:   entryTime(candle),
		EntryRegime: regime,
	}
}

// ClosePosition clears the position for the provided candle's symbol.
func (b *Base) ClosePosition(candle *shared.Candle) {
	delete(b.positions, b.positionKey(candle))
}

// entryTime resolves the entry instant for a position opened on the provided
// candle.
func entryTime(candle *shared.Candle) time.Time {
	if candle.Timestamp.IsZero() {
		return time.Now().UTC()
	}

	return candle.Timestamp
}

// metaFloat formats a float for signal metadata.
func metaFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// metaInt formats an integer for signal metadata.
func metaInt(value int) string {
	return strconv.Itoa(value)
}

// metaBool formats a boolean for signal metadata.
func metaBool(value bool) string {
	return strconv.FormatBool(value)
}
