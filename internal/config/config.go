package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Persistence
	DataPath string `envconfig:"DATA_PATH" default:"workroom.db"`

	// Metrics (optional — empty disables the listener)
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	// Narration (optional — the workspace runs without AI narration)
	AnthropicAPIKey    string `envconfig:"ANTHROPIC_API_KEY"`
	NarrationModel     string `envconfig:"NARRATION_MODEL" default:"claude-sonnet-4-5"`
	NarrationMaxTokens int    `envconfig:"NARRATION_MAX_TOKENS" default:"1024"`
	NarrationStreams   int    `envconfig:"NARRATION_STREAMS" default:"2"`
}

// Load reads configuration from WORKROOM_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("workroom", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks config invariants that envconfig defaults cannot express.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("WORKROOM_DATA_PATH must not be empty")
	}
	if c.NarrationMaxTokens <= 0 {
		return fmt.Errorf("WORKROOM_NARRATION_MAX_TOKENS must be positive (got %d)", c.NarrationMaxTokens)
	}
	if c.NarrationStreams <= 0 {
		return fmt.Errorf("WORKROOM_NARRATION_STREAMS must be positive (got %d)", c.NarrationStreams)
	}
	return nil
}

// NarrationEnabled reports whether AI narration is configured.
func (c *Config) NarrationEnabled() bool {
	return c.AnthropicAPIKey != ""
}
