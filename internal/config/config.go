// Package config provides configuration management for the application.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/newsmill/newsmill/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	// Logger holds logging configuration.
	Logger logger.Config `yaml:"logger" mapstructure:"logger"`
	// Database holds PostgreSQL connection configuration.
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	// LLM holds the chat-completion backend configuration.
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`
	// Publisher holds the downstream article-creation API configuration.
	Publisher PublisherConfig `yaml:"publisher" mapstructure:"publisher"`
	// Fetcher holds page-fetching configuration.
	Fetcher FetcherConfig `yaml:"fetcher" mapstructure:"fetcher"`
	// Rewrite holds rewriting configuration.
	Rewrite RewriteConfig `yaml:"rewrite" mapstructure:"rewrite"`
	// Pipeline holds orchestrator configuration.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	// Scheduler holds cron scheduling configuration.
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	// Server holds the operational HTTP API configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	// Notify holds webhook notification configuration.
	Notify NotifyConfig `yaml:"notify" mapstructure:"notify"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database: %w", ErrMissingHost)
	}
	if c.DBName == "" {
		return fmt.Errorf("database: %w", ErrMissingDBName)
	}
	return nil
}

// LLMConfig holds the chat-completion backend settings. Models are tried in
// order; a rate-limited model falls through to the next after a short backoff.
type LLMConfig struct {
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey           string        `yaml:"api_key" mapstructure:"api_key"`
	Models           []string      `yaml:"models" mapstructure:"models"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimitBackoff time.Duration `yaml:"rate_limit_backoff" mapstructure:"rate_limit_backoff"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("llm: %w", ErrMissingAPIKey)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("llm: %w", ErrNoModels)
	}
	return nil
}

// PublisherConfig holds the downstream article-creation API settings.
type PublisherConfig struct {
	// APIKey authenticates against the internal create-article endpoint.
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// BaseURL overrides the https://{site} target; used in tests.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Validate validates the publisher configuration.
func (c *PublisherConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("publisher: %w", ErrMissingAPIKey)
	}
	return nil
}

// FetcherConfig holds page-fetching settings.
type FetcherConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RenderTimeout time.Duration `yaml:"render_timeout" mapstructure:"render_timeout"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// RewriteConfig holds rewriting settings.
type RewriteConfig struct {
	// Strategy is "unified" (one LLM call for title+body) or "split"
	// (separate title and body calls).
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	// StyleHint overrides the default rewriting voice.
	StyleHint string `yaml:"style_hint" mapstructure:"style_hint"`
}

// Validate validates the rewrite configuration.
func (c *RewriteConfig) Validate() error {
	switch c.Strategy {
	case "unified", "split":
		return nil
	default:
		return fmt.Errorf("rewrite: %w: %q", ErrInvalidStrategy, c.Strategy)
	}
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	// Workers bounds how many scrapers run in parallel.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// StrictFailureAccounting counts every unsuccessful run as exactly one
	// failed run. When false, the legacy accounting is preserved: degraded
	// empty runs leave failed_runs untouched and a run that fails without
	// recording an error is counted in the final bookkeeping pass.
	StrictFailureAccounting bool `yaml:"strict_failure_accounting" mapstructure:"strict_failure_accounting"`
}

// SchedulerConfig holds cron scheduling settings.
type SchedulerConfig struct {
	// CronSpec is a standard 5-field cron expression.
	CronSpec string `yaml:"cron_spec" mapstructure:"cron_spec"`
}

// ServerConfig holds the operational HTTP API settings.
type ServerConfig struct {
	Address      string        `yaml:"address" mapstructure:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// NotifyConfig holds webhook notification settings. An empty URL disables
// notifications.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url" mapstructure:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Validate validates the configuration sections needed by every command.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Rewrite.Validate(); err != nil {
		return err
	}
	return nil
}

// Load unmarshals the configuration from the already-initialized viper
// instance and applies defaults for unset values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
