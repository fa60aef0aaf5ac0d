// Package config loads and saves dshield settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/dshield/internal/engine"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds all dshield configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Simulation SimulationConfig `toml:"simulation"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LogLevel string `toml:"log_level" env:"DSHIELD_LOG_LEVEL"`
	UseCache bool   `toml:"use_cache" env:"DSHIELD_USE_CACHE"`
}

// SimulationConfig holds engine defaults and profile conversion settings.
type SimulationConfig struct {
	Trials  int    `toml:"trials" env:"DSHIELD_TRIALS"`
	Seed    uint64 `toml:"seed" env:"DSHIELD_SEED"`
	Workers int    `toml:"workers" env:"DSHIELD_WORKERS"`

	// VarianceFraction sets the assumed standard deviation, as a fraction of
	// the mean, when a profile omits a variance.
	VarianceFraction float64 `toml:"variance_fraction" env:"DSHIELD_VARIANCE_FRACTION"`

	// ExpensesIncludeDebt means profile expenses already contain debt
	// payments, which are then subtracted before simulating.
	ExpensesIncludeDebt bool `toml:"expenses_include_debt" env:"DSHIELD_EXPENSES_INCLUDE_DEBT"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"DSHIELD_THEME"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
			UseCache: true,
		},
		Simulation: SimulationConfig{
			Trials:              engine.DefaultTrials,
			Seed:                engine.DefaultSeed,
			VarianceFraction:    0.20,
			ExpensesIncludeDebt: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dshield")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dshield")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment variables override file values.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, then applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config location
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Simulation.Trials <= 0 {
		return fmt.Errorf("simulation.trials must be positive, got %d", c.Simulation.Trials)
	}
	if c.Simulation.VarianceFraction < 0 {
		return fmt.Errorf("simulation.variance_fraction must be non-negative, got %v", c.Simulation.VarianceFraction)
	}
	return nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
