package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dnldd/signal/service"
	"github.com/dnldd/signal/shared"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt, syscall.SIGTERM}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		os.Exit(1)
	}

	mode, err := shared.ParseTradingMode(cfg.TradingMode)
	if err != nil {
		log.Printf("parsing trading mode: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCfg := service.SignalConfig{
		DatabaseURL:     cfg.DatabaseURL,
		DataAddr:        cfg.DataServiceAddr,
		ExecutionAddr:   cfg.ExecutionServiceAddr,
		Port:            cfg.SignalServicePort,
		Mode:            mode,
		CooldownMinutes: cfg.SignalCooldownMinutes,
		ReloadMinutes:   cfg.StrategyReloadMinutes,
		Cancel:          cancel,
	}
	signalService, err := service.NewSignal(ctx, &signalCfg)
	if err != nil {
		log.Printf("creating signal service: %v", err)
		os.Exit(1)
	}

	go handleTermination(ctx, cancel)
	signalService.Run(ctx)
}
