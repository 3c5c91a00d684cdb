package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/signal/shared"
)

// warmupFetchFloor is the minimum number of history bars fetched for an
// evaluation.
const warmupFetchFloor = 200

// routes checks whether the provided candle is declared by the strategy row.
func routes(cfg *shared.StrategyConfig, candle *shared.Candle) bool {
	var symbolMatch bool
	for idx := range cfg.Symbols {
		if cfg.Symbols[idx] == candle.Symbol {
			symbolMatch = true
			break
		}
	}
	if !symbolMatch {
		return false
	}

	for idx := range cfg.Timeframes {
		if cfg.Timeframes[idx] == candle.Timeframe {
			return true
		}
	}

	return false
}

// evaluationWindow builds the history window presented to a strategy, with
// the current candle as the final entry.
func evaluationWindow(history []shared.Candle, candle *shared.Candle) []shared.Candle {
	window := make([]shared.Candle, 0, len(history)+1)
	for idx := range history {
		if !candle.Timestamp.IsZero() && !history[idx].Timestamp.Before(candle.Timestamp) {
			continue
		}

		window = append(window, history[idx])
	}

	return append(window, *candle)
}

// evaluate runs the strategy handler for the provided candle, converting
// panics into errors.
func (e *Engine) evaluate(inst *instance, candle *shared.Candle, window []shared.Candle) (signal *shared.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signal = nil
			err = fmt.Errorf("strategy %s panicked evaluating %s: %v", inst.cfg.ID, candle.Symbol, r)
		}
	}()

	return inst.impl.OnCandle(candle, window)
}

// ProcessCandle gates the provided candle through every loaded strategy in
// registration order and emits at most one signal. The first strategy to
// signal wins; the signal is persisted before subscribers or the execution
// forwarder observe it.
func (e *Engine) ProcessCandle(ctx context.Context, candle *shared.Candle) (*shared.Signal, error) {
	e.mtx.Lock()
	instances := make([]*instance, len(e.strategies))
	copy(instances, e.strategies)
	e.mtx.Unlock()

	now := time.Now().UTC()
	ts := candle.Timestamp

	for _, inst := range instances {
		if !routes(&inst.cfg, candle) {
			continue
		}

		// Session, startup and deduplication gates need a usable timestamp.
		if !ts.IsZero() {
			if !inst.impl.InSession(ts) {
				continue
			}

			key := strategyKey(inst.cfg.ID, candle.Symbol, candle.Timeframe)
			e.mtx.Lock()
			latest := e.startupLatestTS[pairKey(candle.Symbol, candle.Timeframe)]
			if !latest.IsZero() && !ts.After(latest) {
				e.mtx.Unlock()
				continue
			}

			if last, ok := e.lastCandleTS[key]; ok && !ts.After(last) {
				e.mtx.Unlock()
				continue
			}

			e.lastCandleTS[key] = ts
			e.mtx.Unlock()
		}

		if e.cfg.CooldownMinutes > 0 {
			e.mtx.Lock()
			last, ok := e.lastSignalTS[cooldownKey(inst.cfg.ID, candle.Symbol)]
			e.mtx.Unlock()

			if ok && now.Sub(last) < time.Duration(e.cfg.CooldownMinutes)*time.Minute {
				continue
			}
		}

		bars := max(warmupFetchFloor, inst.cfg.InitPeriods, inst.impl.LookbackBars())
		history, err := e.cfg.History.FetchHistory(ctx, candle.Symbol, candle.Timeframe, bars, shared.PrimarySource)
		if err != nil {
			return nil, fmt.Errorf("fetching %s %s history: %w", candle.Symbol, candle.Timeframe, err)
		}

		if len(history) < inst.cfg.InitPeriods {
			e.cfg.Logger.Info().Msgf("strategy %s warming up for %s %s: %d/%d bars",
				inst.cfg.Name, candle.Symbol, candle.Timeframe, len(history), inst.cfg.InitPeriods)
			continue
		}

		e.mtx.Lock()
		e.warmupComplete[strategyKey(inst.cfg.ID, candle.Symbol, candle.Timeframe)] = true
		e.mtx.Unlock()

		signal, err := e.evaluate(inst, candle, evaluationWindow(history, candle))
		if err != nil {
			e.cfg.Logger.Error().Err(err).Msgf("strategy %s failed evaluating %s", inst.cfg.ID, candle.Symbol)
			e.cfg.Metrics.StrategyErrors.WithLabelValues(inst.cfg.Name).Inc()
			continue
		}

		if signal == nil {
			continue
		}

		if signal.Side != shared.Long && signal.Side != shared.Short {
			e.cfg.Logger.Error().Msgf("unexpected signal state from strategy %s: %s", inst.cfg.Name, spew.Sdump(signal))
			e.cfg.Metrics.StrategyErrors.WithLabelValues(inst.cfg.Name).Inc()
			continue
		}

		signal.StrategyID = inst.cfg.ID
		signal.StrategyVersion = inst.cfg.Version
		signal.Symbol = candle.Symbol
		signal.Timeframe = candle.Timeframe
		if signal.Meta == nil {
			signal.Meta = make(map[string]string)
		}
		if _, ok := signal.Meta["mode"]; !ok {
			signal.Meta["mode"] = e.cfg.Mode.String()
		}

		e.mtx.Lock()
		e.lastSignalTS[cooldownKey(inst.cfg.ID, candle.Symbol)] = now
		e.mtx.Unlock()

		e.cfg.Metrics.SignalsTotal.WithLabelValues(inst.cfg.Name).Inc()
		e.cfg.Logger.Info().Msgf("strategy %s generated %s %s signal for %s",
			inst.cfg.Name, signal.Side, candle.Timeframe, candle.Symbol)

		stored, err := e.cfg.Store.PersistSignal(ctx, signal)
		if err != nil {
			return nil, fmt.Errorf("persisting %s signal for %s: %w", signal.Side, candle.Symbol, err)
		}

		if !stored {
			e.cfg.Metrics.SignalsDropped.Inc()
			return nil, nil
		}

		e.cfg.Metrics.SignalsPersisted.Inc()

		if e.cfg.Broadcast != nil {
			e.cfg.Broadcast(*signal)
		}

		if e.cfg.Forward != nil {
			e.cfg.Forward(*signal)
		}

		return signal, nil
	}

	return nil, nil
}
