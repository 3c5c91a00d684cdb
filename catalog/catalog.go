package catalog

import (
	"context"
	"fmt"

	"github.com/dnldd/signal/shared"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CatalogConfig is the configuration for the strategy catalog.
type CatalogConfig struct {
	// DatabaseURL is the catalog connection string.
	DatabaseURL string
	// Logger is the catalog logger.
	Logger *zerolog.Logger
}

// Catalog represents the strategy catalog connection.
type Catalog struct {
	cfg  *CatalogConfig
	pool *pgxpool.Pool
}

// Ensure the catalog implements the HistoryFetcher, SignalStorer and
// StrategyCatalog interfaces.
var (
	_ shared.HistoryFetcher  = (*Catalog)(nil)
	_ shared.SignalStorer    = (*Catalog)(nil)
	_ shared.StrategyCatalog = (*Catalog)(nil)
)

// NewCatalog initializes a new catalog connection.
func NewCatalog(ctx context.Context, cfg *CatalogConfig) (*Catalog, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating catalog pool: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging catalog: %w", err)
	}

	return &Catalog{
		cfg:  cfg,
		pool: pool,
	}, nil
}

// Close terminates the catalog connection.
func (c *Catalog) Close() {
	c.pool.Close()
}
