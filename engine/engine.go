package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dnldd/signal/metrics"
	"github.com/dnldd/signal/shared"
	"github.com/dnldd/signal/strategy"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
)

// EngineConfig represents the strategy engine configuration.
type EngineConfig struct {
	// Catalog provides active strategy rows and latest candle timestamps.
	Catalog shared.StrategyCatalog
	// History fetches recent candle history for evaluation.
	History shared.HistoryFetcher
	// Store persists generated signals.
	Store shared.SignalStorer
	// Registry resolves strategy names to factories.
	Registry *strategy.Registry
	// Mode is the trading mode strategies are loaded for.
	Mode shared.TradingMode
	// CooldownMinutes is the minimum interval between signals for a
	// strategy and symbol. Zero disables the cooldown.
	CooldownMinutes int
	// Broadcast relays the provided signal to streaming subscribers.
	Broadcast func(signal shared.Signal)
	// Forward relays the provided signal to the execution service.
	Forward func(signal shared.Signal)
	// Metrics tracks engine activity.
	Metrics *metrics.Metrics
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// instance pairs a catalog strategy row with its evaluating handler.
type instance struct {
	cfg  shared.StrategyConfig
	impl strategy.Strategy
}

// Engine loads strategies from the catalog and drives their evaluation
// against streamed candles.
type Engine struct {
	cfg           *EngineConfig
	updateSignals chan shared.Candle

	mtx             sync.Mutex
	strategies      []*instance
	lastCandleTS    map[string]time.Time
	lastSignalTS    map[string]time.Time
	warmupRequired  map[string]int
	warmupComplete  map[string]bool
	startupLatestTS map[string]time.Time
}

// NewEngine initializes a new strategy engine.
func NewEngine(cfg *EngineConfig) *Engine {
	return &Engine{
		cfg:             cfg,
		updateSignals:   make(chan shared.Candle, bufferSize),
		lastCandleTS:    make(map[string]time.Time),
		lastSignalTS:    make(map[string]time.Time),
		warmupRequired:  make(map[string]int),
		warmupComplete:  make(map[string]bool),
		startupLatestTS: make(map[string]time.Time),
	}
}

// strategyKey generates the bookkeeping key for a strategy, symbol and
// timeframe.
func strategyKey(id string, symbol string, timeframe shared.Timeframe) string {
	return fmt.Sprintf("%s:%s:%s", id, symbol, timeframe)
}

// cooldownKey generates the cooldown bookkeeping key for a strategy and
// symbol.
func cooldownKey(id string, symbol string) string {
	return fmt.Sprintf("%s:%s", id, symbol)
}

// pairKey generates the bookkeeping key for a symbol and timeframe.
func pairKey(symbol string, timeframe shared.Timeframe) string {
	return fmt.Sprintf("%s:%s", symbol, timeframe)
}

// Initialize loads active strategies from the catalog and prepares warmup
// and startup gating state.
func (e *Engine) Initialize(ctx context.Context) error {
	rows, err := e.cfg.Catalog.ActiveStrategies(ctx, e.cfg.Mode)
	if err != nil {
		return fmt.Errorf("loading active strategies: %w", err)
	}

	instances := make([]*instance, 0, len(rows))
	warmupRequired := make(map[string]int)
	warmupComplete := make(map[string]bool)
	for idx := range rows {
		row := rows[idx]
		impl, err := e.cfg.Registry.New(&strategy.InstanceConfig{
			ID:         row.ID,
			Name:       row.Name,
			Version:    row.Version,
			Symbols:    row.Symbols,
			Timeframes: row.Timeframes,
			Params:     strategy.Params(row.Params),
		})
		if err != nil {
			e.cfg.Logger.Error().Err(err).Msgf("skipping strategy %s (%s)", row.Name, row.ID)
			continue
		}

		instances = append(instances, &instance{cfg: row, impl: impl})
		for _, symbol := range row.Symbols {
			for _, timeframe := range row.Timeframes {
				key := strategyKey(row.ID, symbol, timeframe)
				warmupRequired[key] = row.InitPeriods
				warmupComplete[key] = row.InitPeriods == 0
			}
		}
	}

	if len(instances) == 0 {
		return fmt.Errorf("no active strategies for %s mode", e.cfg.Mode)
	}

	startupLatestTS := make(map[string]time.Time)
	for _, inst := range instances {
		for _, symbol := range inst.cfg.Symbols {
			for _, timeframe := range inst.cfg.Timeframes {
				key := pairKey(symbol, timeframe)
				if _, ok := startupLatestTS[key]; ok {
					continue
				}

				latest, err := e.cfg.Catalog.LatestTimestamp(ctx, symbol, timeframe)
				if err != nil {
					return fmt.Errorf("fetching latest %s %s timestamp: %w", symbol, timeframe, err)
				}

				startupLatestTS[key] = latest
			}
		}
	}

	for _, inst := range instances {
		for _, symbol := range inst.cfg.Symbols {
			for _, timeframe := range inst.cfg.Timeframes {
				bars := max(inst.cfg.InitPeriods, inst.impl.LookbackBars())
				history, err := e.cfg.History.FetchHistory(ctx, symbol, timeframe, bars, shared.PrimarySource)
				if err != nil {
					return fmt.Errorf("prefetching %s %s history: %w", symbol, timeframe, err)
				}

				if len(history) >= inst.cfg.InitPeriods {
					warmupComplete[strategyKey(inst.cfg.ID, symbol, timeframe)] = true
				}
			}
		}
	}

	e.mtx.Lock()
	e.strategies = instances
	e.warmupRequired = warmupRequired
	e.warmupComplete = warmupComplete
	e.startupLatestTS = startupLatestTS
	e.mtx.Unlock()

	e.cfg.Logger.Info().Msgf("loaded %d active strategies in %s mode", len(instances), e.cfg.Mode)

	return nil
}

// Reload replaces the live strategy set and its warmup state from the
// catalog. Candles already being evaluated continue against the strategy
// snapshot captured when their evaluation began.
func (e *Engine) Reload(ctx context.Context) error {
	err := e.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("reloading strategies: %w", err)
	}

	return nil
}

// StrategyCount returns the number of loaded strategies.
func (e *Engine) StrategyCount() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.strategies)
}

// SubscriptionPlan returns the symbols needing an upstream candle stream,
// grouped by timeframe, across all loaded strategies.
func (e *Engine) SubscriptionPlan() map[shared.Timeframe][]string {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	seen := make(map[shared.Timeframe]map[string]struct{})
	for _, inst := range e.strategies {
		for _, timeframe := range inst.cfg.Timeframes {
			if _, ok := seen[timeframe]; !ok {
				seen[timeframe] = make(map[string]struct{})
			}
			for _, symbol := range inst.cfg.Symbols {
				seen[timeframe][symbol] = struct{}{}
			}
		}
	}

	plan := make(map[shared.Timeframe][]string, len(seen))
	for timeframe, symbols := range seen {
		list := make([]string, 0, len(symbols))
		for symbol := range symbols {
			list = append(list, symbol)
		}
		sort.Strings(list)
		plan[timeframe] = list
	}

	return plan
}

// SendCandle relays the provided candle for processing.
func (e *Engine) SendCandle(candle shared.Candle) {
	select {
	case e.updateSignals <- candle:
		// do nothing.
	default:
		e.cfg.Logger.Error().Msgf("candle channel at capacity: %d/%d",
			len(e.updateSignals), bufferSize)
	}
}

// handleCandle processes the provided candle.
func (e *Engine) handleCandle(ctx context.Context, candle *shared.Candle) {
	e.cfg.Metrics.CandlesTotal.WithLabelValues(candle.Timeframe.String()).Inc()

	_, err := e.ProcessCandle(ctx, candle)
	if err != nil {
		e.cfg.Logger.Error().Err(err).Msgf("processing %s %s candle", candle.Symbol, candle.Timeframe)
	}
}

// runWorker drains the provided timeframe's candle queue in order.
func (e *Engine) runWorker(ctx context.Context, queue chan shared.Candle) {
	for {
		select {
		case <-ctx.Done():
			return
		case candle := <-queue:
			e.handleCandle(ctx, &candle)
		}
	}
}

// Run manages the lifecycle processes of the strategy engine. Candles are
// serialized per timeframe using dedicated workers.
func (e *Engine) Run(ctx context.Context) {
	workers := make(map[shared.Timeframe]chan shared.Candle)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case candle := <-e.updateSignals:
			worker, ok := workers[candle.Timeframe]
			if !ok {
				worker = make(chan shared.Candle, bufferSize)
				workers[candle.Timeframe] = worker

				wg.Add(1)
				go func(queue chan shared.Candle) {
					defer wg.Done()
					e.runWorker(ctx, queue)
				}(worker)
			}

			select {
			case worker <- candle:
				// do nothing.
			default:
				e.cfg.Logger.Error().Msgf("%s candle worker at capacity: %d/%d",
					candle.Timeframe, len(worker), bufferSize)
			}
		}
	}
}
