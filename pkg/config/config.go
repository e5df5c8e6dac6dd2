// Package config loads and persists the application configuration as YAML,
// merging file contents over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Sim      SimConfig      `yaml:"sim"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Phase    PhaseConfig    `yaml:"phase"`
	Recorder RecorderConfig `yaml:"recorder"`
	Server   ServerConfig   `yaml:"server"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path    string `yaml:"path"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// SimConfig holds settings for the simulator connection.
type SimConfig struct {
	Provider string       `yaml:"provider"` // "xplane", "mock"
	XPlane   XPlaneConfig `yaml:"xplane"`
}

// XPlaneConfig holds the X-Plane UDP endpoint.
type XPlaneConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SamplerConfig holds telemetry acquisition settings.
type SamplerConfig struct {
	Interval         Duration `yaml:"interval"`
	MinInterval      Duration `yaml:"min_interval"`
	PayloadInterval  Duration `yaml:"payload_interval"`
	IdentityInterval Duration `yaml:"identity_interval"`
	StopTimeout      Duration `yaml:"stop_timeout"`
	// Adaptive lets detected phases drive the poll interval.
	Adaptive bool `yaml:"adaptive"`
}

// RefConfig is an optional runway reference point. Zero latitude and
// longitude together mean unset.
type RefConfig struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Heading float64 `yaml:"heading"`
}

// IsSet reports whether the reference point was configured.
func (r RefConfig) IsSet() bool { return r.Lat != 0 || r.Lon != 0 }

// PhaseConfig holds phase detection settings.
type PhaseConfig struct {
	// Category is the initial aircraft category; telemetry overrides it
	// once the simulator reports one.
	Category     string    `yaml:"category"`
	ProfilesPath string    `yaml:"profiles_path"`
	Departure    RefConfig `yaml:"departure"`
	Arrival      RefConfig `yaml:"arrival"`
}

// RecorderConfig holds flight recording settings.
type RecorderConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Path     string   `yaml:"path"`
	Interval Duration `yaml:"interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Path:    "./logs/skyphase.log",
			Level:   "INFO",
			Console: true,
		},
		Sim: SimConfig{
			Provider: "xplane",
			XPlane: XPlaneConfig{
				Host: "127.0.0.1",
				Port: 49000,
			},
		},
		Sampler: SamplerConfig{
			Interval:         Duration(1 * time.Second),
			MinInterval:      Duration(10 * time.Millisecond),
			PayloadInterval:  Duration(5 * time.Second),
			IdentityInterval: Duration(30 * time.Second),
			StopTimeout:      Duration(2 * time.Second),
			Adaptive:         true,
		},
		Phase: PhaseConfig{
			Category: "ga",
		},
		Recorder: RecorderConfig{
			Enabled:  true,
			Path:     "./data/flights.db",
			Interval: Duration(1 * time.Second),
		},
		Server: ServerConfig{
			Address: "localhost:1930",
		},
	}
}

// Load reads the configuration from path. A missing file is created with
// defaults; an existing file is merged over the defaults and never written
// back, preserving user formatting and comments.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env fallback for the simulator host, useful when the sim runs on
	// another machine. Applies on first run too, before a config file
	// exists to edit.
	if host := os.Getenv("XPLANE_HOST"); host != "" && cfg.Sim.XPlane.Host == "127.0.0.1" {
		cfg.Sim.XPlane.Host = host
	}
	return cfg, nil
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
