package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Side represents the direction of a trading signal.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
	Flat  Side = "flat"
)

// String stringifies the provided side.
func (s Side) String() string {
	return string(s)
}

// Opposite returns the side closing a position opened on the receiver.
func (s Side) Opposite() Side {
	switch s {
	case Long:
		return Short
	case Short:
		return Long
	default:
		return Flat
	}
}

// ParseSide parses a side from its string form, accepting order aliases.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(raw) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	case "flat":
		return Flat, nil
	default:
		return "", fmt.Errorf("unknown signal side: %q", raw)
	}
}

// Signal represents a trading signal generated by a strategy.
type Signal struct {
	Side       Side              `json:"side"`
	Price      float64           `json:"price"`
	Confidence float64           `json:"confidence"`
	Meta       map[string]string `json:"meta"`

	// Set by the engine before the signal is persisted or emitted.
	StrategyID      string    `json:"strategy_id"`
	StrategyVersion string    `json:"strategy_version"`
	Symbol          string    `json:"symbol"`
	Timeframe       Timeframe `json:"timeframe"`
	IdempotencyKey  string    `json:"idempotency_key"`
	CorrelationID   string    `json:"correlation_id"`
	CreatedOn       time.Time `json:"created_on"`
}

// NewSignal initializes a new signal with generated trace keys.
func NewSignal(side Side, price float64, confidence float64, meta map[string]string) *Signal {
	if meta == nil {
		meta = make(map[string]string)
	}

	return &Signal{
		Side:           side,
		Price:          price,
		Confidence:     confidence,
		Meta:           meta,
		IdempotencyKey: uuid.NewString(),
		CorrelationID:  uuid.NewString(),
		CreatedOn:      time.Now().UTC(),
	}
}
