package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tickstats/internal/config"
	"tickstats/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// StdevOptions hold parameters for the rolling stdev pipeline.
type StdevOptions struct {
	PricesPath string
	OutPath    string
	PNGPath    string
	From       *time.Time
	To         *time.Time
	WindowSize int
	Workers    int
	Persist    bool
}

// ConvertOptions hold parameters for the price conversion pipeline.
type ConvertOptions struct {
	PairsPath  string
	PricesPath string
	SpotsPath  string
	OutPath    string
	Lookback   time.Duration
	Persist    bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Kind  string
	Limit int
}
