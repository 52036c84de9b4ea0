// Package config loads tool configuration from file, environment and
// defaults, in that order of increasing precedence.
//
// Configuration is read from marksheet.yaml in the working directory or
// under $HOME/.config/marksheet, then overridden by MARKSHEET_* environment
// variables (nested keys joined by underscores, e.g. MARKSHEET_GEMINI_MODEL).
// Every knob has a default, so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/mark"
)

// Config holds all tool configuration.
type Config struct {
	// Thresholds are the mark-evaluation cutoffs.
	Thresholds mark.Policy `mapstructure:"thresholds"`

	// Workers bounds batch grading concurrency.
	Workers int `mapstructure:"workers"`

	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// GeminiConfig holds layout-service credentials.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DatabaseConfig holds the optional report store connection.
type DatabaseConfig struct {
	// URL is a postgres connection string. Empty disables the store.
	URL string `mapstructure:"url"`
}

// LogConfig holds logging output settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads configuration. A non-empty path names an explicit config
// file; otherwise the default search paths are used.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("marksheet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/marksheet")
	}

	// Set defaults
	v.SetDefault("thresholds.inset_frac", mark.DefaultInsetFrac)
	v.SetDefault("thresholds.dark_brightness", mark.DefaultDarkBrightness)
	v.SetDefault("thresholds.mark_threshold", mark.DefaultMarkThreshold)
	v.SetDefault("workers", grade.DefaultWorkers)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "")
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		// A missing file on the search path is fine; everything else,
		// including a missing explicit file, is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables (e.g. MARKSHEET_WORKERS).
	v.SetEnvPrefix("MARKSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// The bare key every Gemini example uses still works.
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
