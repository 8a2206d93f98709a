package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"tickstats/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Window   WindowConfig   `mapstructure:"window"`
	Rates    RatesConfig    `mapstructure:"rates"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. Persistence is
// optional; an empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// WindowConfig governs the rolling stdev pipeline.
type WindowConfig struct {
	Size             int           `mapstructure:"size"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	Workers          int           `mapstructure:"workers"`
}

// RatesConfig governs the price conversion pipeline.
type RatesConfig struct {
	Lookback             time.Duration `mapstructure:"lookback"`
	CopyUnconvertedPrice bool          `mapstructure:"copy_unconverted_price"`
}

// ExportConfig sets CSV/PNG output behaviour.
type ExportConfig struct {
	MaxDataPoints int    `mapstructure:"max_data_points"`
	FloatPlaces   int32  `mapstructure:"float_places"`
	ChartField    string `mapstructure:"chart_field"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tickstats")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("window.size", 20)
	v.SetDefault("window.snapshot_interval", "1h")
	v.SetDefault("window.workers", 4)

	v.SetDefault("rates.lookback", "1h")
	v.SetDefault("rates.copy_unconverted_price", true)

	v.SetDefault("export.max_data_points", 100000)
	v.SetDefault("export.float_places", 6)
	v.SetDefault("export.chart_field", "mid")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Window.Size <= 0 {
		return fmt.Errorf("window.size must be greater than zero")
	}
	if c.Window.SnapshotInterval <= 0 {
		return fmt.Errorf("window.snapshot_interval must be greater than zero")
	}
	if c.Window.Workers <= 0 {
		return fmt.Errorf("window.workers must be greater than zero")
	}
	if c.Rates.Lookback <= 0 {
		return fmt.Errorf("rates.lookback must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Export.FloatPlaces < 0 {
		return fmt.Errorf("export.float_places cannot be negative")
	}
	switch c.Export.ChartField {
	case "bid", "mid", "ask":
	default:
		return fmt.Errorf("export.chart_field must be one of bid, mid, ask")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
