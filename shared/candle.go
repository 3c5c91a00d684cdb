package shared

import (
	"time"
)

// Candle represents a unit OHLC candle for a symbol and timeframe.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	// Timestamp is the candle instant normalized to UTC. A zero value marks
	// a candle whose wire timestamp could not be parsed.
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Count     int64     `json:"count"`
}
