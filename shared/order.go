package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SourceService identifies this service in outbound trace envelopes.
	SourceService = "signal-service"

	// Order types.
	MarketOrder = "market"
	LimitOrder  = "limit"
)

// TradingMode represents the routing mode applied to generated signals.
type TradingMode int

const (
	PaperMode TradingMode = iota
	LiveMode
)

// String stringifies the provided trading mode.
func (m TradingMode) String() string {
	switch m {
	case PaperMode:
		return "paper"
	case LiveMode:
		return "live"
	default:
		return "unknown"
	}
}

// ParseTradingMode parses a trading mode from its string form.
func ParseTradingMode(raw string) (TradingMode, error) {
	switch strings.ToLower(raw) {
	case "paper":
		return PaperMode, nil
	case "live":
		return LiveMode, nil
	default:
		return 0, fmt.Errorf("unknown trading mode: %q", raw)
	}
}

// TraceContext carries tracing identifiers across service boundaries.
type TraceContext struct {
	CorrelationID  string    `json:"correlation_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	SourceService  string    `json:"source_service"`
	LatencyMs      int64     `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// OrderRequest represents an order submission envelope for the execution
// service.
type OrderRequest struct {
	SignalID        string            `json:"signal_id"`
	StrategyID      string            `json:"strategy_id"`
	StrategyVersion string            `json:"strategy_version"`
	Symbol          string            `json:"symbol"`
	Side            Side              `json:"side"`
	Size            float64           `json:"size"`
	Price           float64           `json:"price"`
	OrderType       string            `json:"order_type"`
	Mode            TradingMode       `json:"mode"`
	RiskChecks      map[string]string `json:"risk_checks"`
	Trace           TraceContext      `json:"trace"`
}

// OrderStatus represents the execution service's response to an order request.
type OrderStatus struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
}

// NewOrderRequest translates the provided signal into an order request. Order
// sizing is left to the execution service.
func NewOrderRequest(signal *Signal, mode TradingMode, now time.Time) *OrderRequest {
	idempotencyKey := signal.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	correlationID := signal.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	// Normalize order aliases like "buy" and "sell".
	side := signal.Side
	parsed, err := ParseSide(side.String())
	if err == nil {
		side = parsed
	}

	orderType := LimitOrder
	if signal.Price == 0 {
		orderType = MarketOrder
	}

	var latencyMs int64
	if !signal.CreatedOn.IsZero() {
		latencyMs = now.Sub(signal.CreatedOn).Milliseconds()
	}

	return &OrderRequest{
		SignalID:        idempotencyKey,
		StrategyID:      signal.StrategyID,
		StrategyVersion: signal.StrategyVersion,
		Symbol:          signal.Symbol,
		Side:            side,
		Price:           signal.Price,
		OrderType:       orderType,
		Mode:            mode,
		RiskChecks:      make(map[string]string),
		Trace: TraceContext{
			CorrelationID:  correlationID,
			IdempotencyKey: idempotencyKey,
			SourceService:  SourceService,
			LatencyMs:      latencyMs,
			Timestamp:      now,
		},
	}
}
