package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Window.Size != 20 {
		t.Fatalf("window.size = %d, want 20", cfg.Window.Size)
	}
	if cfg.Window.SnapshotInterval != time.Hour {
		t.Fatalf("window.snapshot_interval = %v, want 1h", cfg.Window.SnapshotInterval)
	}
	if cfg.Rates.Lookback != time.Hour {
		t.Fatalf("rates.lookback = %v, want 1h", cfg.Rates.Lookback)
	}
	if !cfg.Rates.CopyUnconvertedPrice {
		t.Fatal("rates.copy_unconverted_price should default to true")
	}
	if cfg.Export.ChartField != "mid" {
		t.Fatalf("export.chart_field = %q, want mid", cfg.Export.ChartField)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "window:\n  size: 5\n  snapshot_interval: 30m\nrates:\n  lookback: 2h\n  copy_unconverted_price: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Size != 5 {
		t.Fatalf("window.size = %d, want 5", cfg.Window.Size)
	}
	if cfg.Window.SnapshotInterval != 30*time.Minute {
		t.Fatalf("window.snapshot_interval = %v, want 30m", cfg.Window.SnapshotInterval)
	}
	if cfg.Rates.Lookback != 2*time.Hour {
		t.Fatalf("rates.lookback = %v, want 2h", cfg.Rates.Lookback)
	}
	if cfg.Rates.CopyUnconvertedPrice {
		t.Fatal("rates.copy_unconverted_price should be false")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window size", func(c *Config) { c.Window.Size = 0 }},
		{"negative interval", func(c *Config) { c.Window.SnapshotInterval = -time.Hour }},
		{"zero workers", func(c *Config) { c.Window.Workers = 0 }},
		{"zero lookback", func(c *Config) { c.Rates.Lookback = 0 }},
		{"bad chart field", func(c *Config) { c.Export.ChartField = "spread" }},
		{"zero max points", func(c *Config) { c.Export.MaxDataPoints = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("load defaults: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
