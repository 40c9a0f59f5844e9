// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads exprmigrate settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tombee/exprmigrate/internal/log"
	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config is the exprmigrate configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Migrate MigrateConfig `yaml:"migrate"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Environment: EXPRMIGRATE_LOG_LEVEL, LOG_LEVEL
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text).
	// Environment: LOG_FORMAT
	// Default: text
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MigrateConfig configures which trigger documents migrate picks up.
type MigrateConfig struct {
	// Include lists doublestar patterns, relative to the search root, that
	// select trigger documents when migrate is given a directory.
	Include []string `yaml:"include"`

	// Exclude lists patterns to skip. Editor temporary files are always
	// excluded.
	Exclude []string `yaml:"exclude"`

	// VerifyTarget compiles every converted expression with the target
	// engine and checks its metric aliases.
	// Environment: EXPRMIGRATE_VERIFY_TARGET
	// Default: true
	VerifyTarget bool `yaml:"verify_target"`
}

// WatchConfig configures migrate --watch.
type WatchConfig struct {
	// Debounce is how long the watcher waits for a file to settle.
	// Environment: EXPRMIGRATE_WATCH_DEBOUNCE
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// MaxRunsPerSecond caps how often file changes start a migration run.
	// Default: 2
	MaxRunsPerSecond float64 `yaml:"max_runs_per_second"`
}

// DefaultInclude matches trigger documents in every supported format.
var DefaultInclude = []string{
	"**/*.trigger.yaml",
	"**/*.trigger.yml",
	"**/*.trigger.json",
	"**/*.trigger.jsonc",
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			Format:    string(log.FormatText),
			AddSource: false,
		},
		Migrate: MigrateConfig{
			Include:      append([]string(nil), DefaultInclude...),
			Exclude:      []string{},
			VerifyTarget: true,
		},
		Watch: WatchConfig{
			Debounce:         500 * time.Millisecond,
			MaxRunsPerSecond: 2,
		},
	}
}

// Load reads configuration from configPath (optional), fills defaults,
// applies environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &pkgerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, &pkgerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// LoggerConfig returns the logger configuration described by c.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = log.Format(c.Log.Format)
	cfg.AddSource = c.Log.AddSource
	return cfg
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if len(c.Migrate.Include) == 0 {
		c.Migrate.Include = defaults.Migrate.Include
	}
	if c.Migrate.Exclude == nil {
		c.Migrate.Exclude = defaults.Migrate.Exclude
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	if c.Watch.MaxRunsPerSecond == 0 {
		c.Watch.MaxRunsPerSecond = defaults.Watch.MaxRunsPerSecond
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv overlays environment variables. Malformed values are errors
// rather than silently ignored.
func (c *Config) loadFromEnv() error {
	logCfg := &log.Config{
		Level:     c.Log.Level,
		Format:    log.Format(c.Log.Format),
		AddSource: c.Log.AddSource,
	}
	log.ApplyEnv(logCfg)
	c.Log.Level = logCfg.Level
	c.Log.Format = string(logCfg.Format)
	c.Log.AddSource = logCfg.AddSource

	if val := os.Getenv("EXPRMIGRATE_VERIFY_TARGET"); val != "" {
		verify, err := strconv.ParseBool(val)
		if err != nil {
			return &pkgerrors.ConfigError{
				Key:    "migrate.verify_target",
				Reason: fmt.Sprintf("EXPRMIGRATE_VERIFY_TARGET must be a boolean, got %q", val),
				Cause:  err,
			}
		}
		c.Migrate.VerifyTarget = verify
	}

	if val := os.Getenv("EXPRMIGRATE_WATCH_DEBOUNCE"); val != "" {
		debounce, err := time.ParseDuration(val)
		if err != nil {
			return &pkgerrors.ConfigError{
				Key:    "watch.debounce",
				Reason: fmt.Sprintf("EXPRMIGRATE_WATCH_DEBOUNCE must be a duration, got %q", val),
				Cause:  err,
			}
		}
		c.Watch.Debounce = debounce
	}

	return nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if !log.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	for i, pattern := range c.Migrate.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Sprintf("migrate.include[%d] is not a valid pattern: %q", i, pattern))
		}
	}
	for i, pattern := range c.Migrate.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Sprintf("migrate.exclude[%d] is not a valid pattern: %q", i, pattern))
		}
	}

	if c.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce must be positive, got %v", c.Watch.Debounce))
	}
	if c.Watch.MaxRunsPerSecond <= 0 {
		errs = append(errs, fmt.Sprintf("watch.max_runs_per_second must be positive, got %v", c.Watch.MaxRunsPerSecond))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}
