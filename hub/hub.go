package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/signal/metrics"
	"github.com/dnldd/signal/shared"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// queueSize is the buffer size of each subscriber queue.
	queueSize = 256
	// minSubscriberBuffer is the minimum buffer size for subscriber sets.
	minSubscriberBuffer = 24
)

// Filter narrows the signals delivered to a subscriber.
type Filter struct {
	// StrategyIDs limits delivery to the provided strategies. Empty matches
	// any strategy.
	StrategyIDs []string
	// Symbols limits delivery to the provided symbols. Empty matches any
	// symbol.
	Symbols []string
}

// contains checks whether the provided list includes the provided value.
func contains(list []string, value string) bool {
	for idx := range list {
		if list[idx] == value {
			return true
		}
	}

	return false
}

// matches checks whether the provided signal passes the filter.
func (f *Filter) matches(signal *shared.Signal) bool {
	if len(f.StrategyIDs) > 0 && !contains(f.StrategyIDs, signal.StrategyID) {
		return false
	}

	if len(f.Symbols) > 0 && !contains(f.Symbols, signal.Symbol) {
		return false
	}

	return true
}

// Subscription represents a registered signal consumer.
type Subscription struct {
	// ID uniquely identifies the subscription.
	ID string

	hub        *Hub
	filter     Filter
	signals    chan shared.Signal
	lastSeen   *atomic.Time
	done       chan struct{}
	cancelOnce sync.Once
}

// Signals returns the subscription's signal queue.
func (s *Subscription) Signals() <-chan shared.Signal {
	return s.signals
}

// Done returns a channel closed when the subscription is removed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel removes the subscription from its hub.
func (s *Subscription) Cancel() {
	s.hub.remove(s.ID)
}

// HubConfig represents the subscriber hub configuration.
type HubConfig struct {
	// IdleLimit is the duration after which a subscriber with no delivered
	// signals is removed. Zero disables the idle sweep.
	IdleLimit time.Duration
	// Metrics tracks hub activity.
	Metrics *metrics.Metrics
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Hub fans generated signals out to filtered subscribers.
type Hub struct {
	cfg          *HubConfig
	jobScheduler gocron.Scheduler

	mtx         sync.RWMutex
	subscribers map[string]*Subscription
}

// NewHub initializes a new subscriber hub.
func NewHub(cfg *HubConfig) (*Hub, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating job scheduler: %w", err)
	}

	hub := &Hub{
		cfg:          cfg,
		jobScheduler: scheduler,
		subscribers:  make(map[string]*Subscription, minSubscriberBuffer),
	}

	return hub, nil
}

// Subscribe registers a subscriber for signals passing the provided filter.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	sub := &Subscription{
		ID:       uuid.NewString(),
		hub:      h,
		filter:   filter,
		signals:  make(chan shared.Signal, queueSize),
		lastSeen: atomic.NewTime(time.Now().UTC()),
		done:     make(chan struct{}),
	}

	h.mtx.Lock()
	h.subscribers[sub.ID] = sub
	h.mtx.Unlock()

	h.cfg.Metrics.Subscribers.Inc()
	h.cfg.Logger.Info().Msgf("subscriber %s registered", sub.ID)

	return sub
}

// remove deregisters the provided subscription.
func (h *Hub) remove(id string) {
	h.mtx.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mtx.Unlock()

	if !ok {
		return
	}

	sub.cancelOnce.Do(func() {
		close(sub.done)
	})

	h.cfg.Metrics.Subscribers.Dec()
	h.cfg.Logger.Info().Msgf("subscriber %s removed", id)
}

// Broadcast fans the provided signal out to all matching subscribers. Full
// subscriber queues drop the signal rather than stall the hub.
func (h *Hub) Broadcast(signal shared.Signal) {
	h.mtx.RLock()
	subs := make([]*Subscription, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mtx.RUnlock()

	now := time.Now().UTC()
	for _, sub := range subs {
		if !sub.filter.matches(&signal) {
			continue
		}

		select {
		case sub.signals <- signal:
			sub.lastSeen.Store(now)
		default:
			h.cfg.Metrics.SubscriberDrops.WithLabelValues(sub.ID).Inc()
			h.cfg.Logger.Error().Msgf("subscriber %s queue at capacity: %d/%d",
				sub.ID, len(sub.signals), queueSize)
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	return len(h.subscribers)
}

// sweepIdle removes subscribers that exceeded the idle limit.
func (h *Hub) sweepIdle() {
	if h.cfg.IdleLimit <= 0 {
		return
	}

	now := time.Now().UTC()

	h.mtx.RLock()
	idle := make([]string, 0, len(h.subscribers))
	for id, sub := range h.subscribers {
		if now.Sub(sub.lastSeen.Load()) > h.cfg.IdleLimit {
			idle = append(idle, id)
		}
	}
	h.mtx.RUnlock()

	for _, id := range idle {
		h.cfg.Logger.Info().Msgf("removing idle subscriber %s", id)
		h.remove(id)
	}
}

// Run manages the lifecycle processes of the subscriber hub.
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.IdleLimit > 0 {
		_, err := h.jobScheduler.NewJob(gocron.DurationJob(h.cfg.IdleLimit),
			gocron.NewTask(h.sweepIdle))
		if err != nil {
			h.cfg.Logger.Error().Err(err).Msg("scheduling idle subscriber sweep")
		}

		h.jobScheduler.Start()

		defer func() {
			err := h.jobScheduler.Shutdown()
			if err != nil {
				h.cfg.Logger.Error().Err(err).Msg("shutting down job scheduler")
			}
		}()
	}

	<-ctx.Done()

	h.mtx.Lock()
	subs := make([]*Subscription, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[string]*Subscription)
	h.mtx.Unlock()

	for _, sub := range subs {
		sub.cancelOnce.Do(func() {
			close(sub.done)
		})
		h.cfg.Metrics.Subscribers.Dec()
	}
}
