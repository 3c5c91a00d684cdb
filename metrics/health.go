package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the service health.
type HealthStatus struct {
	mu sync.RWMutex

	startedAt     time.Time
	feeds         map[string]bool
	strategyCount int
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		startedAt: time.Now(),
		feeds:     make(map[string]bool),
	}
}

// SetFeedConnected records the connection state of a timeframe feed.
func (h *HealthStatus) SetFeedConnected(timeframe string, connected bool) {
	h.mu.Lock()
	h.feeds[timeframe] = connected
	h.mu.Unlock()
}

// SetStrategyCount records the number of loaded strategies.
func (h *HealthStatus) SetStrategyCount(count int) {
	h.mu.Lock()
	h.strategyCount = count
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	for _, connected := range h.feeds {
		if !connected {
			overallStatus = "degraded"
			httpCode = http.StatusServiceUnavailable
			break
		}
	}

	status := struct {
		Status     string          `json:"status"`
		Uptime     string          `json:"uptime"`
		Feeds      map[string]bool `json:"feeds"`
		Strategies int             `json:"strategies"`
	}{
		Status:     overallStatus,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Feeds:      h.feeds,
		Strategies: h.strategyCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}
