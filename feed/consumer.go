package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/dnldd/signal/metrics"
	"github.com/dnldd/signal/shared"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// streamPath is the data service's candle stream route.
	streamPath = "/v1/ohlc/stream"
	// handshakeTimeout bounds the stream dial.
	handshakeTimeout = time.Second * 10
	// defaultReconnectDelay is the first reconnect delay.
	defaultReconnectDelay = time.Second
	// maxReconnectDelay caps the reconnect delay.
	maxReconnectDelay = time.Second * 30
	// steadyStreamDuration is how long a stream must run before its
	// reconnect delay resets.
	steadyStreamDuration = time.Minute
)

// subscribeRequest is the candle stream subscription payload.
type subscribeRequest struct {
	Symbols          []string `json:"symbols"`
	Timeframe        string   `json:"timeframe"`
	IncludeTrades    bool     `json:"include_trades"`
	IncludeOrderbook bool     `json:"include_orderbook"`
}

// ConsumerConfig represents the candle stream consumer configuration.
type ConsumerConfig struct {
	// DataAddr is the data service's base address.
	DataAddr string
	// Timeframe is the candle timeframe consumed.
	Timeframe shared.Timeframe
	// Symbols are the symbols subscribed to.
	Symbols []string
	// Relay routes decoded candles for processing.
	Relay func(candle shared.Candle)
	// Connected flags stream health transitions.
	Connected func(timeframe string, connected bool)
	// ReconnectDelay is the initial delay between redials. Zero applies
	// the default.
	ReconnectDelay time.Duration
	// Metrics tracks consumer activity.
	Metrics *metrics.Metrics
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Consumer streams candles for a single timeframe from the data service.
type Consumer struct {
	cfg *ConsumerConfig
}

// NewConsumer initializes a new candle stream consumer.
func NewConsumer(cfg *ConsumerConfig) *Consumer {
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}

	return &Consumer{
		cfg: cfg,
	}
}

// parseCandle decodes a streamed candle payload. Candles with unparseable
// timestamps keep a zero instant for the gating pipeline.
func parseCandle(payload []byte) (shared.Candle, error) {
	result := gjson.ParseBytes(payload)
	candle := shared.Candle{
		Symbol:    result.Get("symbol").String(),
		Timeframe: shared.Timeframe(result.Get("timeframe").String()),
		Open:      result.Get("open").Float(),
		High:      result.Get("high").Float(),
		Low:       result.Get("low").Float(),
		Close:     result.Get("close").Float(),
		Volume:    result.Get("volume").Float(),
		Count:     result.Get("count").Int(),
	}

	ts, err := shared.NormalizeTimestamp(result.Get("timestamp").Value())
	if err != nil {
		return candle, fmt.Errorf("normalizing %s candle timestamp: %w", candle.Symbol, err)
	}

	candle.Timestamp = ts

	return candle, nil
}

// streamURL builds the websocket url for the candle stream.
func (c *Consumer) streamURL() string {
	return c.cfg.DataAddr + streamPath
}

// stream runs a single candle stream connection until it errors or the
// provided context is cancelled.
func (c *Consumer) stream(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("dialing candle stream: %w", err)
	}
	defer conn.Close()

	sub := subscribeRequest{
		Symbols:   c.cfg.Symbols,
		Timeframe: c.cfg.Timeframe.String(),
	}
	err = conn.WriteJSON(sub)
	if err != nil {
		return fmt.Errorf("subscribing to %s candle stream: %w", c.cfg.Timeframe, err)
	}

	c.cfg.Connected(c.cfg.Timeframe.String(), true)
	defer c.cfg.Connected(c.cfg.Timeframe.String(), false)

	c.cfg.Logger.Info().Msgf("streaming %s candles for %v", c.cfg.Timeframe, c.cfg.Symbols)

	// Unblock pending reads when the consumer is cancelled.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-streamCtx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading %s candle stream: %w", c.cfg.Timeframe, err)
		}

		candle, err := parseCandle(payload)
		if err != nil {
			c.cfg.Logger.Warn().Err(err).Msgf("decoding %s candle payload", c.cfg.Timeframe)
		}

		// Non-candle control payloads carry no symbol.
		if candle.Symbol == "" {
			continue
		}

		c.cfg.Relay(candle)
	}
}

// Run manages the lifecycle processes of the candle stream consumer,
// redialing interrupted streams with capped backoff.
func (c *Consumer) Run(ctx context.Context) {
	backoff := c.cfg.ReconnectDelay
	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			c.cfg.Logger.Error().Err(err).Msgf("%s candle stream interrupted", c.cfg.Timeframe)
		}

		if time.Since(start) > steadyStreamDuration {
			backoff = c.cfg.ReconnectDelay
		}

		c.cfg.Metrics.FeedReconnects.WithLabelValues(c.cfg.Timeframe.String()).Inc()
		c.cfg.Logger.Info().Msgf("reconnecting %s candle stream in %s", c.cfg.Timeframe, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			// do nothing.
		}

		backoff = min(backoff*2, maxReconnectDelay)
	}
}
