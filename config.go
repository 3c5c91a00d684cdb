package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/dnldd/signal/shared"
	"github.com/joho/godotenv"
)

const (
	// defaultTradingMode routes generated signals when no mode is provided.
	defaultTradingMode = "live"
	// defaultCooldownMinutes throttles per-strategy signals when no
	// cooldown is provided.
	defaultCooldownMinutes = 15
)

// Config is the configuration struct for the service.
type Config struct {
	// DatabaseURL is the catalog database connection string.
	DatabaseURL string
	// DataServiceAddr is the data service's base address.
	DataServiceAddr string
	// ExecutionServiceAddr is the execution service's base address.
	ExecutionServiceAddr string
	// SignalServicePort is the port the signal service listens on.
	SignalServicePort string
	// TradingMode selects which strategy catalog rows load.
	TradingMode string
	// SignalCooldownMinutes is the minimum interval between signals for a
	// strategy and symbol.
	SignalCooldownMinutes int
	// StrategyReloadMinutes is the interval between strategy catalog
	// reloads. Zero disables periodic reloads.
	StrategyReloadMinutes int

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.DatabaseURL == "" {
		errs = errors.Join(errs, fmt.Errorf("database url cannot be an empty string"))
	}
	if cfg.DataServiceAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("data service address cannot be an empty string"))
	}
	if cfg.ExecutionServiceAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("execution service address cannot be an empty string"))
	}
	if cfg.SignalServicePort == "" {
		errs = errors.Join(errs, fmt.Errorf("signal service port cannot be an empty string"))
	}
	_, err := shared.ParseTradingMode(cfg.TradingMode)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.SignalCooldownMinutes < 0 {
		errs = errors.Join(errs, fmt.Errorf("signal cooldown cannot be negative"))
	}
	if cfg.StrategyReloadMinutes < 0 {
		errs = errors.Join(errs, fmt.Errorf("strategy reload interval cannot be negative"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them
// to avoid reregistration. Preset field values act as defaults, overridden
// by environment variables and flags in turn.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		def := *value.(*string)
		if defValue != "" {
			def = defValue
		}
		flag.StringVar(value.(*string), name, def, usage)
	case reflect.Bool:
		def := *value.(*bool)
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		def := *value.(*int)
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			def := *value.(*[]string)
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Preset defaults, overridden by environment variables and flags.
	cfg.TradingMode = defaultTradingMode
	cfg.SignalCooldownMinutes = defaultCooldownMinutes

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("database_url", &cfg.DatabaseURL, "the catalog database connection string")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dataservice_addr", &cfg.DataServiceAddr, "the data service address")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("executionservice_addr", &cfg.ExecutionServiceAddr, "the execution service address")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("signalservice_port", &cfg.SignalServicePort, "the signal service port")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("trading_mode", &cfg.TradingMode, "the trading mode, live or paper")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("signal_cooldown_minutes", &cfg.SignalCooldownMinutes, "the minimum minutes between signals for a strategy and symbol")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("strategy_reload_minutes", &cfg.StrategyReloadMinutes, "the minutes between strategy catalog reloads, zero disables")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
