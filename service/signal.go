package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dnldd/signal/catalog"
	"github.com/dnldd/signal/engine"
	"github.com/dnldd/signal/execution"
	"github.com/dnldd/signal/feed"
	"github.com/dnldd/signal/hub"
	"github.com/dnldd/signal/metrics"
	"github.com/dnldd/signal/shared"
	"github.com/dnldd/signal/strategy"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// shutdownWait bounds the server drain on shutdown.
	shutdownWait = time.Second * 5
	// subscriberIdleLimit is the duration after which idle stream
	// subscribers are removed.
	subscriberIdleLimit = time.Hour
)

// SignalConfig represents the configuration struct for the signal service.
type SignalConfig struct {
	// DatabaseURL is the catalog connection string.
	DatabaseURL string
	// DataAddr is the data service's base address.
	DataAddr string
	// ExecutionAddr is the execution service's base address.
	ExecutionAddr string
	// Port is the port the signal service listens on.
	Port string
	// Mode is the trading mode strategies are loaded for.
	Mode shared.TradingMode
	// CooldownMinutes is the minimum interval between signals for a
	// strategy and symbol.
	CooldownMinutes int
	// ReloadMinutes is the interval between strategy catalog reloads. Zero
	// disables periodic reloads.
	ReloadMinutes int
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *SignalConfig) Validate() error {
	var errs error

	if cfg.DatabaseURL == "" {
		errs = errors.Join(errs, fmt.Errorf("database url cannot be an empty string"))
	}
	if cfg.DataAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("data service address cannot be an empty string"))
	}
	if cfg.ExecutionAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("execution service address cannot be an empty string"))
	}
	if cfg.Port == "" {
		errs = errors.Join(errs, fmt.Errorf("service port cannot be an empty string"))
	}
	if cfg.CooldownMinutes < 0 {
		errs = errors.Join(errs, fmt.Errorf("signal cooldown cannot be negative"))
	}
	if cfg.ReloadMinutes < 0 {
		errs = errors.Join(errs, fmt.Errorf("strategy reload interval cannot be negative"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Signal represents a trading signal generation service.
type Signal struct {
	cfg          *SignalConfig
	catalog      *catalog.Catalog
	signalEngine *engine.Engine
	forwarder    *execution.Forwarder
	signalHub    *hub.Hub
	consumers    []*feed.Consumer
	metrics      *metrics.Metrics
	health       *metrics.HealthStatus
	server       *http.Server
	listener     net.Listener
	jobScheduler gocron.Scheduler
	logger       *zerolog.Logger
	wg           sync.WaitGroup
}

// NewSignal initializes a new signal service.
func NewSignal(ctx context.Context, cfg *SignalConfig) (*Signal, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating signal service config: %v", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "signal").Logger()

	mtr := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	catalogLogger := logger.With().Str("component", "catalog").Logger()
	cat, err := catalog.NewCatalog(ctx, &catalog.CatalogConfig{
		DatabaseURL: cfg.DatabaseURL,
		Logger:      &catalogLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating catalog: %v", err)
	}

	hubLogger := logger.With().Str("component", "hub").Logger()
	signalHub, err := hub.NewHub(&hub.HubConfig{
		IdleLimit: subscriberIdleLimit,
		Metrics:   mtr,
		Logger:    hubLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating subscriber hub: %v", err)
	}

	forwarderLogger := logger.With().Str("component", "forwarder").Logger()
	forwarder := execution.NewForwarder(&execution.ForwarderConfig{
		ExecutionAddr: cfg.ExecutionAddr,
		Mode:          cfg.Mode,
		Metrics:       mtr,
		Logger:        forwarderLogger,
	})

	engineLogger := logger.With().Str("component", "engine").Logger()
	signalEngine := engine.NewEngine(&engine.EngineConfig{
		Catalog:         cat,
		History:         cat,
		Store:           cat,
		Registry:        strategy.NewRegistry(),
		Mode:            cfg.Mode,
		CooldownMinutes: cfg.CooldownMinutes,
		Broadcast:       signalHub.Broadcast,
		Forward:         forwarder.SendSignal,
		Metrics:         mtr,
		Logger:          engineLogger,
	})

	err = signalEngine.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing signal engine: %v", err)
	}

	health.SetStrategyCount(signalEngine.StrategyCount())

	plan := signalEngine.SubscriptionPlan()
	if len(plan) == 0 {
		return nil, fmt.Errorf("no candle subscriptions planned for loaded strategies")
	}

	consumers := make([]*feed.Consumer, 0, len(plan))
	for timeframe, symbols := range plan {
		health.SetFeedConnected(timeframe.String(), false)

		feedLogger := logger.With().Str("component", "feed").
			Str("timeframe", timeframe.String()).Logger()
		consumers = append(consumers, feed.NewConsumer(&feed.ConsumerConfig{
			DataAddr:  cfg.DataAddr,
			Timeframe: timeframe,
			Symbols:   symbols,
			Relay:     signalEngine.SendCandle,
			Connected: health.SetFeedConnected,
			Metrics:   mtr,
			Logger:    feedLogger,
		}))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/signals/stream", signalHub.HandleSignalStream)
	mux.HandleFunc("/v1/signals/publish", signalHub.HandleSignalPublish)
	mux.Handle("/metrics", mtr.Handler())
	mux.Handle("/healthz", health)

	listener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("binding signal service listener: %v", err)
	}

	jobScheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating job scheduler: %v", err)
	}

	service := &Signal{
		cfg:          cfg,
		catalog:      cat,
		signalEngine: signalEngine,
		forwarder:    forwarder,
		signalHub:    signalHub,
		consumers:    consumers,
		metrics:      mtr,
		health:       health,
		server:       &http.Server{Handler: mux},
		listener:     listener,
		jobScheduler: jobScheduler,
		logger:       &logger,
	}

	return service, nil
}

// Run handles the lifecycle processes of the signal service.
func (s *Signal) Run(ctx context.Context) {
	s.wg.Add(3 + len(s.consumers))

	go func() {
		s.signalEngine.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.forwarder.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.signalHub.Run(ctx)
		s.wg.Done()
	}()

	for idx := range s.consumers {
		consumer := s.consumers[idx]
		go func() {
			consumer.Run(ctx)
			s.wg.Done()
		}()
	}

	go func() {
		err := s.server.Serve(s.listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("serving signal endpoints")
			s.cfg.Cancel()
		}
	}()

	if s.cfg.ReloadMinutes > 0 {
		_, err := s.jobScheduler.NewJob(
			gocron.DurationJob(time.Duration(s.cfg.ReloadMinutes)*time.Minute),
			gocron.NewTask(func() {
				err := s.signalEngine.Reload(ctx)
				if err != nil {
					s.logger.Error().Err(err).Msg("reloading strategies")
					return
				}

				s.health.SetStrategyCount(s.signalEngine.StrategyCount())
			}))
		if err != nil {
			s.logger.Error().Err(err).Msg("scheduling strategy reloads")
		}

		s.jobScheduler.Start()
		defer func() {
			err := s.jobScheduler.Shutdown()
			if err != nil {
				s.logger.Error().Err(err).Msg("shutting down job scheduler")
			}
		}()
	}

	s.logger.Info().Msgf("signal service listening on %s", s.listener.Addr())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("shutting down signal endpoints")
	}

	s.wg.Wait()
	s.catalog.Close()
}
