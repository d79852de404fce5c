// Package config loads modcache settings from TOML.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/modcache/errors"
	"github.com/wippyai/modcache/loader"
)

// Config is the top-level configuration file.
type Config struct {
	Logging Logging `toml:"logging"`
	Gas     Gas     `toml:"gas"`
	State   State   `toml:"state"`
}

// Logging selects the zap logger built by Logger.
type Logging struct {
	Level       string `toml:"level"`
	Encoding    string `toml:"encoding"`
	Development bool   `toml:"development"`
}

// Gas sets the resolution budget and per-step costs.
type Gas struct {
	Budget     uint64 `toml:"budget"`
	TokenCost  uint64 `toml:"token_cost"`
	StructCost uint64 `toml:"struct_cost"`
}

// State lists module files to publish into the in-memory chain state.
// Relative paths are resolved against the configuration file's directory.
type State struct {
	Modules []string `toml:"modules"`
	Version uint64   `toml:"version"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info", Encoding: "console"},
		Gas: Gas{
			Budget:     10_000,
			TokenCost:  loader.DefaultCosts.TokenCost,
			StructCost: loader.DefaultCosts.StructCost,
		},
		State: State{Version: 1},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err,
			fmt.Sprintf("%s: failed to parse TOML", path))
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path).
			Value(keys).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}
	switch c.Logging.Encoding {
	case "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("logging.encoding must be console or json, got %q", c.Logging.Encoding))
	}
	if c.Gas.Budget == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "gas.budget must be positive")
	}
	if c.Gas.TokenCost == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "gas.token_cost must be positive")
	}
	if c.Gas.StructCost == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "gas.struct_cost must be positive")
	}
	for i, m := range c.State.Modules {
		if strings.TrimSpace(m) == "" {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("state.modules[%d] is empty", i))
		}
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "encode TOML")
	}
	return nil
}

// Logger builds a zap logger from the logging section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.Logging.Encoding
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// LoaderOptions returns cache options carrying the configured costs.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		Costs: loader.Costs{
			TokenCost:  c.Gas.TokenCost,
			StructCost: c.Gas.StructCost,
		},
	}
}
