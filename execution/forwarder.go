package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dnldd/signal/metrics"
	"github.com/dnldd/signal/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent order submissions.
	maxWorkers = 8
	// maxRetries is the total number of submission attempts per signal.
	maxRetries = 3
	// requestTimeout bounds a single submission request.
	requestTimeout = time.Second * 5
	// defaultRetryDelay is the linear backoff unit between attempts.
	defaultRetryDelay = time.Second
	// executePath is the execution service's order submission route.
	executePath = "/v1/execute"
)

// ForwarderConfig represents the execution forwarder configuration.
type ForwarderConfig struct {
	// ExecutionAddr is the execution service's base address.
	ExecutionAddr string
	// Mode is the trading mode stamped on forwarded orders.
	Mode shared.TradingMode
	// RetryDelay is the linear backoff unit between submission attempts.
	// Zero applies the default.
	RetryDelay time.Duration
	// Metrics tracks forwarder activity.
	Metrics *metrics.Metrics
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Forwarder relays persisted signals to the execution service as order
// requests.
type Forwarder struct {
	cfg     *ForwarderConfig
	client  *http.Client
	signals chan shared.Signal
	workers chan struct{}
}

// NewForwarder initializes a new execution forwarder.
func NewForwarder(cfg *ForwarderConfig) *Forwarder {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	return &Forwarder{
		cfg:     cfg,
		client:  &http.Client{Timeout: requestTimeout},
		signals: make(chan shared.Signal, bufferSize),
		workers: make(chan struct{}, maxWorkers),
	}
}

// SendSignal relays the provided signal for forwarding.
func (f *Forwarder) SendSignal(signal shared.Signal) {
	select {
	case f.signals <- signal:
		// do nothing.
	default:
		f.cfg.Logger.Error().Msgf("signal channel at capacity: %d/%d",
			len(f.signals), bufferSize)
	}
}

// submit posts the provided order payload once. It reports whether a failure
// is transient and worth retrying.
func (f *Forwarder) submit(ctx context.Context, body []byte) (*shared.OrderStatus, bool, error) {
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodPost,
		f.cfg.ExecutionAddr+executePath, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating execution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("submitting order: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading execution response: %w", err)
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		status := &shared.OrderStatus{
			OrderID: gjson.GetBytes(payload, "order_id").String(),
			Status:  gjson.GetBytes(payload, "status").String(),
			Reason:  gjson.GetBytes(payload, "reason").String(),
		}

		return status, false, nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("execution service unavailable: %s", resp.Status)
	default:
		reason := gjson.GetBytes(payload, "reason").String()
		if reason == "" {
			reason = gjson.GetBytes(payload, "error").String()
		}

		return nil, false, fmt.Errorf("order rejected (%s): %s", resp.Status, reason)
	}
}

// ForwardSignal translates the provided signal into an order request and
// submits it, retrying transient failures with linear backoff.
func (f *Forwarder) ForwardSignal(ctx context.Context, signal *shared.Signal) (*shared.OrderStatus, error) {
	order := shared.NewOrderRequest(signal, f.cfg.Mode, time.Now().UTC())
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshalling order request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			f.cfg.Metrics.ForwardRetries.Inc()

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.cfg.RetryDelay * time.Duration(attempt-1)):
				// do nothing.
			}
		}

		status, transient, err := f.submit(ctx, body)
		if err == nil {
			f.cfg.Logger.Info().Msgf("forwarded %s %s order %s: %s",
				order.Side, order.Symbol, status.OrderID, status.Status)
			return status, nil
		}

		lastErr = err
		if !transient {
			break
		}
	}

	f.cfg.Metrics.ForwardFailures.Inc()

	return nil, fmt.Errorf("forwarding %s signal for %s: %w", signal.Side, signal.Symbol, lastErr)
}

// handleSignal forwards the provided signal. The signal is already persisted
// so a final failure is logged without requeuing.
func (f *Forwarder) handleSignal(ctx context.Context, signal *shared.Signal) {
	_, err := f.ForwardSignal(ctx, signal)
	if err != nil {
		f.cfg.Logger.Error().Err(err).Msgf("forwarding signal %s", signal.IdempotencyKey)
	}
}

// Run manages the lifecycle processes of the execution forwarder.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-f.signals:
			f.workers <- struct{}{}
			go func(signal shared.Signal) {
				f.handleSignal(ctx, &signal)
				<-f.workers
			}(signal)
		}
	}
}
