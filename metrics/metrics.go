package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal service.
type Metrics struct {
	CandlesTotal     *prometheus.CounterVec // labels: timeframe
	SignalsTotal     *prometheus.CounterVec // labels: strategy
	SignalsPersisted prometheus.Counter
	SignalsDropped   prometheus.Counter
	StrategyErrors   *prometheus.CounterVec // labels: strategy
	ForwardRetries   prometheus.Counter
	ForwardFailures  prometheus.Counter
	SubscriberDrops  *prometheus.CounterVec // labels: subscriber
	Subscribers      prometheus.Gauge
	FeedReconnects   *prometheus.CounterVec // labels: timeframe

	registry *prometheus.Registry
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CandlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_candles_total",
			Help: "Total candles received from the data service",
		}, []string{"timeframe"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_signals_total",
			Help: "Total signals generated per strategy",
		}, []string{"strategy"}),
		SignalsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalservice_signals_persisted_total",
			Help: "Total signals written to the catalog",
		}),
		SignalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalservice_signals_dropped_total",
			Help: "Signals dropped for symbols without a catalog instrument",
		}),
		StrategyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_strategy_errors_total",
			Help: "Strategy evaluation errors per strategy",
		}, []string{"strategy"}),
		ForwardRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalservice_forward_retries_total",
			Help: "Execution forward attempts beyond the first",
		}),
		ForwardFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalservice_forward_failures_total",
			Help: "Signals that exhausted execution forward retries",
		}),
		SubscriberDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_subscriber_drops_total",
			Help: "Signals dropped per subscriber due to a full queue",
		}, []string{"subscriber"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalservice_subscribers",
			Help: "Currently connected signal stream subscribers",
		}),
		FeedReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_feed_reconnects_total",
			Help: "Upstream candle stream reconnection attempts per timeframe",
		}, []string{"timeframe"}),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CandlesTotal,
		m.SignalsTotal,
		m.SignalsPersisted,
		m.SignalsDropped,
		m.StrategyErrors,
		m.ForwardRetries,
		m.ForwardFailures,
		m.SubscriberDrops,
		m.Subscribers,
		m.FeedReconnects,
	)

	return m
}

// Handler returns the HTTP handler serving the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
