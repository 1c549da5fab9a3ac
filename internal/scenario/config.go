// Package scenario loads run configuration and drives the kernel through a
// synthetic tick feed outside of the kernel's own boundary.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
	ServerAddr  string `yaml:"server_addr"`
}

// Kernel mirrors kernel.Config for YAML hydration; NewRunner converts it,
// with kernel.Config's own validation left to kernel.New.
type Kernel struct {
	MakerFeeBps float64 `yaml:"maker_fee_bps"`
	TakerFeeBps float64 `yaml:"taker_fee_bps"`
	SpreadBps   float64 `yaml:"spread_bps"`
	InitialCash float64 `yaml:"initial_cash"`
	TickSize    float64 `yaml:"tick_size"`
	Capacity    int     `yaml:"capacity"`
}

// Feed configures the synthetic tick generator.
type Feed struct {
	Seed        int64   `yaml:"seed"`
	Ticks       int     `yaml:"ticks"`
	BasePrice   int64   `yaml:"base_price"`
	VolTicks    int64   `yaml:"vol_ticks"`
	MinQty      float64 `yaml:"min_qty"`
	MaxQty      float64 `yaml:"max_qty"`
	TickMs      int64   `yaml:"tick_ms"`
}

// Strategy holds the strategy section of a scenario file. It is loaded and
// saved with the rest of Config, but nothing reads it when a run starts:
// cmd/backtest picks its strategy from the -strategy flag with fixed
// parameters.
type Strategy struct {
	Mode       string  `yaml:"mode"`
	OrderQty   float64 `yaml:"order_qty"`
	RangeTicks int64   `yaml:"range_ticks"`
}

// Config collects every leaf needed to run a scenario end to end.
type Config struct {
	App      App      `yaml:"app"`
	Kernel   Kernel   `yaml:"kernel"`
	Feed     Feed     `yaml:"feed"`
	Strategy Strategy `yaml:"strategy"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scenario yaml: %w", err)
	}
	return &cfg, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil scenario config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal scenario yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenario config: %w", err)
	}
	return nil
}
