// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"algcore/internal/frame"
	"algcore/internal/presentation"
	"algcore/internal/staging"
)

// Defaults applied before any file or environment override.
const (
	DefaultLogLevel       = "info"
	DefaultByteOrder      = "big"             // must match frame.DefaultByteOrder
	DefaultRealTimeFactor = 0.0               // replay as fast as possible
	DefaultEEGInterval    = frame.EEGInterval // one EEG frame per 64ms
	DefaultPATInterval    = frame.PATInterval // one PAT frame per 40ms
	DefaultCapacity       = time.Hour         // grows past this on demand
	MaxRealTimeFactor     = 1000.0            // slower than this is a typo
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug        bool               `yaml:"debug"`        // Enable debug logging.
	LogLevel     string             `yaml:"log_level"`    // Logging level (e.g., "debug", "info", "warn", "error").
	Frame        FrameConfig        `yaml:"frame"`        // Wire format of incoming frames.
	Simulator    SimulatorConfig    `yaml:"simulator"`    // Replay cadence and pacing.
	Staging      staging.Config     `yaml:"staging"`      // Online staging windows.
	Presentation PresentationConfig `yaml:"presentation"` // Online presentation settings.
}

// FrameConfig holds settings related to the binary frame codec.
type FrameConfig struct {
	ByteOrder string        `yaml:"byte_order"` // "big" or "little".
	Capacity  time.Duration `yaml:"capacity"`   // Signal duration preallocated per session.
}

// SimulatorConfig holds settings for file-backed replays.
type SimulatorConfig struct {
	EEGInterval    time.Duration `yaml:"eeg_interval"`     // Virtual time between EEG frames.
	PATInterval    time.Duration `yaml:"pat_interval"`     // Virtual time between PAT frames.
	RealTimeFactor float64       `yaml:"real_time_factor"` // 0 for no pacing, 1 for real time.
}

// PresentationConfig enables and tunes the presentation algorithm.
type PresentationConfig struct {
	Enabled             bool `yaml:"enabled"`
	presentation.Config `yaml:",inline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Frame: FrameConfig{
			ByteOrder: DefaultByteOrder,
			Capacity:  DefaultCapacity,
		},
		Simulator: SimulatorConfig{
			EEGInterval:    DefaultEEGInterval,
			PATInterval:    DefaultPATInterval,
			RealTimeFactor: DefaultRealTimeFactor,
		},
		Staging: staging.DefaultConfig(),
		Presentation: PresentationConfig{
			Enabled: false,
			Config:  presentation.DefaultConfig(),
		},
	}
}

// Order returns the configured byte order, falling back to the default when
// the setting is invalid. Validate reports invalid settings.
func (c *Config) Order() frame.ByteOrder {
	o, err := frame.ParseByteOrder(c.Frame.ByteOrder)
	if err != nil {
		return frame.DefaultByteOrder
	}
	return o
}
