// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	CatalogPath string         `yaml:"catalog_path"`
	Log         LogConfig      `yaml:"log"`
	Playback    PlaybackConfig `yaml:"playback"`
	KeyBindings KeyMap         `yaml:"key_bindings"`
	Messages    MessagesConfig `yaml:"messages"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"file" validate:"oneof=stdout stderr file"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file" default:"tourguide.log"`
}

// PlaybackConfig represents playback tuning.
type PlaybackConfig struct {
	ProgressIntervalMs  int `yaml:"progress_interval_ms" default:"250" validate:"gte=50,lte=5000"`
	BufferMs            int `yaml:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	SeekStepSeconds     int `yaml:"seek_step_seconds" default:"5" validate:"gte=1,lte=600"`
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" default:"30" validate:"gte=1"`
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	PlayPause   string `yaml:"play_pause" default:"space" validate:"required"`
	Next        string `yaml:"next" default:"n" validate:"required"`
	Previous    string `yaml:"previous" default:"p" validate:"required"`
	SeekForward string `yaml:"seek_forward" default:"right" validate:"required"`
	SeekBack    string `yaml:"seek_back" default:"left" validate:"required"`
	Playlist    string `yaml:"playlist" default:"l" validate:"required"`
	Quit        string `yaml:"quit" default:"q" validate:"required"`
}

// MessagesConfig represents user-facing notices.
type MessagesConfig struct {
	NoAudio        string `yaml:"no_audio" default:"Esta pista aún no tiene audio disponible."`
	PlaybackFailed string `yaml:"playback_failed" default:"No se pudo reproducir el audio."`
}

// ProgressInterval returns the position report period
func (p PlaybackConfig) ProgressInterval() time.Duration {
	return time.Duration(p.ProgressIntervalMs) * time.Millisecond
}

// Buffer returns the output buffer length
func (p PlaybackConfig) Buffer() time.Duration {
	return time.Duration(p.BufferMs) * time.Millisecond
}

// SeekStep returns the relative seek distance
func (p PlaybackConfig) SeekStep() time.Duration {
	return time.Duration(p.SeekStepSeconds) * time.Second
}

// FetchTimeout returns the remote audio fetch timeout
func (p PlaybackConfig) FetchTimeout() time.Duration {
	return time.Duration(p.FetchTimeoutSeconds) * time.Second
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "config defaults"))
	}
	return &cfg
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// LoadConfig reads configuration from path. A missing file yields defaults.
// Environment variables take precedence over file values.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(err, "failed to read config file")
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("TOURGUIDE_CATALOG"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("TOURGUIDE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(GetDefaultConfig(), path); err != nil {
			return nil, errors.Wrap(err, "failed to save default config")
		}
	}

	return config, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("TOURGUIDE_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tourguide", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(home, ".config", "tourguide", "config.yaml")
}
