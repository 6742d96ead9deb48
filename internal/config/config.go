// Package config loads the relay's TOML configuration file, falling back
// to built-in defaults for anything the file omits.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full set of knobs the relay reads at startup. Nothing in
// here is reloaded at runtime.
type Config struct {
	Network   NetworkConfig   `toml:"network"`
	World     WorldConfig     `toml:"world"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

// NetworkConfig controls the listening socket and per-session queues.
type NetworkConfig struct {
	BindAddress  string        `toml:"bind_address"`
	InQueueSize  int           `toml:"in_queue_size"`
	OutQueueSize int           `toml:"out_queue_size"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// WorldConfig holds the spatial constants and published map seed.
type WorldConfig struct {
	SizeBlock int64 `toml:"size_block"`
	SizeZone  int64 `toml:"size_zone"`
	MapSeed   int32 `toml:"map_seed"`
}

// ScriptingConfig points at the directory of hook scripts loaded at
// startup by the extension adapter (internal/ext).
type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

// LoggingConfig controls the structured logger's verbosity and encoding.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads and parses the TOML file at path, overlaying it onto
// defaults() so a partial file is valid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration, for running with no -config
// flag at all.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Network: NetworkConfig{
			BindAddress:  "0.0.0.0:12345",
			InQueueSize:  128,
			OutQueueSize: 256,
			WriteTimeout: 10 * time.Second,
		},
		World: WorldConfig{
			SizeBlock: 32,
			SizeZone:  32 * 32,
			MapSeed:   1337,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
