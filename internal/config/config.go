// Package config provides unified configuration loading for fibertract.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/fibertract/internal/adapt"
	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/pain"
)

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// Config contains all fibertract configuration settings.
type Config struct {
	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store selects where snapshots are kept.
	Store StoreConfig `json:"store" yaml:"store"`

	// Simulation holds the tick-level constants.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Adaptation holds the drift rules. A rule given in the file replaces
	// the default rule for that property as a whole.
	Adaptation adapt.Config `json:"adaptation" yaml:"adaptation"`

	// Pain holds the emission and classification constants.
	Pain pain.Config `json:"pain" yaml:"pain"`

	// RateLimits overrides the MCP per-tool limits, keyed by tool name.
	RateLimits map[string]RateLimit `json:"rate_limits,omitempty" yaml:"rate_limits,omitempty"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the event log at <data_dir>/events.jsonl.
	// "trace" additionally logs every tract of every tick.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// StoreConfig configures the snapshot store.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// DataDir is where the database and event log live. Empty means
	// ~/.fibertract.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
}

// SimulationConfig configures ticking.
type SimulationConfig struct {
	// DecayRate is how much every chemical wears off per tick. Default: 8.
	DecayRate uint8 `json:"decay_rate" yaml:"decay_rate"`

	// Parallelism bounds the bundles ticked at once; 0 means unbounded.
	Parallelism int `json:"parallelism" yaml:"parallelism"`

	// ProfilesFile is an optional YAML file of custom profiles, added to
	// the built-in presets.
	ProfilesFile string `json:"profiles_file,omitempty" yaml:"profiles_file,omitempty"`
}

// RateLimit is a token bucket: Rate tokens per second, up to Burst.
type RateLimit struct {
	Rate  float64 `json:"rate" yaml:"rate"`
	Burst int     `json:"burst" yaml:"burst"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Simulation: SimulationConfig{
			DecayRate: modulation.DefaultDecayRate,
		},
		Adaptation: adapt.DefaultConfig(),
		Pain:       pain.DefaultConfig(),
	}
}

// DefaultPath returns ~/.fibertract/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fibertract", FileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.fibertract/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.DataDir = expandPath(config.Store.DataDir)
	config.Simulation.ProfilesFile = expandPath(config.Simulation.ProfilesFile)
	return config, nil
}

// Validate checks that the configuration is valid. Failures are
// fault.ConfigurationErrors.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fault.Configf("logging.level", "invalid log level: %s (valid: trace, debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fault.Configf("logging.format", "invalid format: %s (valid: text, json)", c.Logging.Format)
	}

	switch c.Store.Backend {
	case "", "sqlite", "memory":
	default:
		return fault.Configf("store.backend", "invalid backend: %s (valid: sqlite, memory)", c.Store.Backend)
	}

	if c.Simulation.Parallelism < 0 {
		return fault.Configf("simulation.parallelism", "must be >= 0, got %d", c.Simulation.Parallelism)
	}

	if err := c.Adaptation.Validate(); err != nil {
		return err
	}
	if err := c.Pain.Validate(); err != nil {
		return err
	}

	for tool, rl := range c.RateLimits {
		if rl.Rate <= 0 || rl.Burst < 1 {
			return fault.Configf("rate_limits."+tool, "rate must be > 0 and burst >= 1, got %g/%d", rl.Rate, rl.Burst)
		}
	}
	return nil
}

// DataDir returns the configured data directory, or ~/.fibertract.
func (c *Config) DataDir() (string, error) {
	if c.Store.DataDir != "" {
		return c.Store.DataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fibertract"), nil
}

// BundleOptions returns the options every bundle built under this config
// takes: its adaptation engine, pain model and loggers. The decay rate is
// left out so restored bundles keep their persisted rate; fresh bundles add
// bundle.WithDecayRate(c.Simulation.DecayRate).
func (c *Config) BundleOptions(logger *slog.Logger, events *logging.EventLogger) ([]bundle.Option, error) {
	engine, err := adapt.NewEngine(c.Adaptation)
	if err != nil {
		return nil, err
	}
	model, err := pain.NewModel(c.Pain)
	if err != nil {
		return nil, err
	}
	return []bundle.Option{
		bundle.WithEngine(engine),
		bundle.WithPainModel(model),
		bundle.WithLogger(logger, events),
	}, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FIBERTRACT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FIBERTRACT_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("FIBERTRACT_STORE"); v != "" {
		config.Store.Backend = v
	}
	if v := os.Getenv("FIBERTRACT_DATA_DIR"); v != "" {
		config.Store.DataDir = expandPath(v)
	}
	if v := os.Getenv("FIBERTRACT_PROFILES"); v != "" {
		config.Simulation.ProfilesFile = expandPath(v)
	}
	if v := os.Getenv("FIBERTRACT_DECAY_RATE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			config.Simulation.DecayRate = uint8(n)
		}
	}
	if v := os.Getenv("FIBERTRACT_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Parallelism = n
		}
	}
}

// expandPath expands ${VAR} patterns and a leading ~/.
func expandPath(s string) string {
	if strings.Contains(s, "${") {
		s = os.Expand(s, os.Getenv)
	}
	if rest, ok := strings.CutPrefix(s, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, rest)
		}
	}
	return s
}
