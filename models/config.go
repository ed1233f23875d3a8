// Package models defines configuration and the data structures shared
// across the collection and cleaning stages.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDenylist holds phrases identifying low-value bot/boilerplate
// replies. Matching is a case-sensitive substring check.
var DefaultDenylist = []string{
	"Thanks for posting",
	"I am a bot",
	"Please read the rules",
}

// Config holds the full runtime configuration, loaded once at process
// start and passed by reference into each component.
type Config struct {
	Communities          []string `yaml:"communities"`
	MaxPostsPerCommunity int      `yaml:"max_posts_per_community"`
	PageSize             int      `yaml:"page_size"`
	Workers              int      `yaml:"workers"`
	DataDir              string   `yaml:"data_dir"`
	Denylist             []string `yaml:"denylist"`

	// Language is an ISO 639-1 code ("en"). Empty disables the filter.
	Language string `yaml:"language"`

	// ResolveLinkPosts fetches the linked article for posts without a
	// self-text body and uses its readable content instead.
	ResolveLinkPosts bool `yaml:"resolve_link_posts"`

	Source  SourceConfig  `yaml:"source"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// SourceConfig configures the forum API client. Credentials are never
// stored here; they come from the environment (REDDIT_CLIENT_ID,
// REDDIT_CLIENT_SECRET, REDDIT_USER_AGENT).
type SourceConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// GatewayConfig configures the language-model endpoint. The endpoint is
// OpenAI-compatible, so a local Ollama server works out of the box.
type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
	Workers int    `yaml:"workers"`
}

// LoadConfig reads and validates a YAML config file, applying defaults
// for anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()

	if len(cfg.Communities) == 0 {
		return nil, fmt.Errorf("config: at least one community is required")
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxPostsPerCommunity <= 0 {
		c.MaxPostsPerCommunity = 50
	}
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if len(c.Denylist) == 0 {
		c.Denylist = DefaultDenylist
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "https://www.reddit.com"
	}
	if c.Source.Timeout == "" {
		c.Source.Timeout = "30s"
	}
	if c.Source.RequestsPerMinute <= 0 {
		c.Source.RequestsPerMinute = 20
	}
	if c.Source.Burst <= 0 {
		c.Source.Burst = 1
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "http://localhost:11434/v1"
	}
	if c.Gateway.Model == "" {
		c.Gateway.Model = "mistral"
	}
	if c.Gateway.Timeout == "" {
		c.Gateway.Timeout = "60s"
	}
	if c.Gateway.Workers <= 0 {
		c.Gateway.Workers = 1
	}
}

// SourceTimeout returns the parsed source HTTP timeout.
func (c *Config) SourceTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Source.Timeout)
}

// GatewayTimeout returns the parsed per-row gateway timeout.
func (c *Config) GatewayTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Gateway.Timeout)
}
