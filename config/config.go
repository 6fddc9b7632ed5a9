// Package config provides configuration loading for archsketch.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete archsketch configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Retry  RetryConfig  `yaml:"retry"`
	Parser ParserConfig `yaml:"parser"`
	NATS   NATSConfig   `yaml:"nats"`
}

// ModelConfig configures the LLM endpoint used for modifications.
type ModelConfig struct {
	// Provider is the registered provider name: "ollama", "openai", "anthropic".
	Provider string `yaml:"provider"`
	// Name is the model identifier (e.g., "qwen2.5-coder:32b").
	Name string `yaml:"name"`
	// Endpoint is the base API URL (empty = provider default).
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses.
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig configures the modification retry policy.
type RetryConfig struct {
	// MaxAttempts is the attempt cap per request.
	MaxAttempts int `yaml:"max_attempts"`
	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration `yaml:"backoff_base"`
	// MaxBackoff caps the backoff duration.
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// ParserConfig configures local resolution.
type ParserConfig struct {
	// HistoryLimit bounds the conversation history (0 = default).
	HistoryLimit int `yaml:"history_limit"`
	// TemplatesFile optionally replaces the built-in template table.
	TemplatesFile string `yaml:"templates_file"`
}

// NATSConfig configures the optional NATS collaborators.
type NATSConfig struct {
	// URL is the NATS server URL (empty = feedback and snapshots disabled).
	URL string `yaml:"url"`
	// Bucket is the JetStream KV bucket for spec snapshots.
	Bucket string `yaml:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Name:        "qwen2.5-coder:32b",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     3 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BackoffBase: 1 * time.Second,
			MaxBackoff:  5 * time.Second,
		},
		Parser: ParserConfig{
			HistoryLimit: 10,
		},
		NATS: NATSConfig{
			Bucket: "archsketch-specs",
		},
	}
}

// LoadFromFile reads a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	if other.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = other.Retry.MaxAttempts
	}
	if other.Retry.BackoffBase != 0 {
		c.Retry.BackoffBase = other.Retry.BackoffBase
	}
	if other.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = other.Retry.MaxBackoff
	}

	if other.Parser.HistoryLimit != 0 {
		c.Parser.HistoryLimit = other.Parser.HistoryLimit
	}
	if other.Parser.TemplatesFile != "" {
		c.Parser.TemplatesFile = other.Parser.TemplatesFile
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be in [0,1]")
	}
	return nil
}
