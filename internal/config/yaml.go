// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"algcore/internal/frame"
	applog "algcore/internal/log"
)

var ErrInvalid = errors.New("invalid configuration")

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("algcore.yaml", "config.yaml"). If no file is found,
// it uses built-in defaults. After loading defaults or from file, it applies environment
// variable overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"algcore.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if _, err := frame.ParseByteOrder(c.Frame.ByteOrder); err != nil {
		return fmt.Errorf("%w: frame.byte_order: %v", ErrInvalid, err)
	}
	if c.Frame.Capacity < 0 {
		return fmt.Errorf("%w: frame.capacity must not be negative", ErrInvalid)
	}

	// Simulator Validation
	if c.Simulator.EEGInterval <= 0 || c.Simulator.PATInterval <= 0 {
		return fmt.Errorf("%w: simulator intervals must be positive", ErrInvalid)
	}
	if c.Simulator.RealTimeFactor < 0 || c.Simulator.RealTimeFactor > MaxRealTimeFactor {
		return fmt.Errorf("%w: simulator.real_time_factor %v out of [0, %v]",
			ErrInvalid, c.Simulator.RealTimeFactor, MaxRealTimeFactor)
	}

	// Algorithm Validation
	if err := c.Staging.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Presentation.Enabled {
		if err := c.Presentation.Config.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	return nil
}

// applyEnvOverrides lets ENV_* variables replace individual settings.
// Unparseable values are ignored with a warning.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Infof("configuration: Overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_BYTE_ORDER
	if val, ok := os.LookupEnv("ENV_BYTE_ORDER"); ok {
		cfg.Frame.ByteOrder = val
		applog.Infof("configuration: Overriding frame.byte_order from env: %s", val)
	}

	// ENV_{EEG,PAT}_INTERVAL
	overrideDuration("ENV_EEG_INTERVAL", "simulator.eeg_interval", &cfg.Simulator.EEGInterval)
	overrideDuration("ENV_PAT_INTERVAL", "simulator.pat_interval", &cfg.Simulator.PATInterval)

	// ENV_REAL_TIME_FACTOR
	if val, ok := os.LookupEnv("ENV_REAL_TIME_FACTOR"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Simulator.RealTimeFactor = fVal
			applog.Infof("configuration: Overriding simulator.real_time_factor from env: %v", fVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_REAL_TIME_FACTOR=%q: %v", val, err)
		}
	}

	// ENV_PRESENTATION_ENABLED
	if val, ok := os.LookupEnv("ENV_PRESENTATION_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Presentation.Enabled = bVal
			applog.Infof("configuration: Overriding presentation.enabled from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_PRESENTATION_ENABLED=%q: %v", val, err)
		}
	}
}

func overrideDuration(env, key string, dst *time.Duration) {
	val, ok := os.LookupEnv(env)
	if !ok {
		return
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		applog.Warnf("configuration: Ignoring %s=%q: %v", env, val, err)
		return
	}
	*dst = dur
	applog.Infof("configuration: Overriding %s from env: %s", key, dur)
}
