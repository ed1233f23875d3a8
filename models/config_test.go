package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "communities:\n  - CarTalk\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.MaxPostsPerCommunity != 50 {
		t.Errorf("MaxPostsPerCommunity = %d, want 50", cfg.MaxPostsPerCommunity)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if len(cfg.Denylist) != len(DefaultDenylist) {
		t.Errorf("Denylist = %v, want defaults", cfg.Denylist)
	}
	if cfg.Source.BaseURL != "https://www.reddit.com" {
		t.Errorf("Source.BaseURL = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.RequestsPerMinute != 20 || cfg.Source.Burst != 1 {
		t.Errorf("rate defaults = %v rpm, burst %d", cfg.Source.RequestsPerMinute, cfg.Source.Burst)
	}
	if cfg.Gateway.Model != "mistral" || cfg.Gateway.Workers != 1 {
		t.Errorf("gateway defaults = %+v", cfg.Gateway)
	}

	if d, err := cfg.SourceTimeout(); err != nil || d != 30*time.Second {
		t.Errorf("SourceTimeout() = %v, %v, want 30s", d, err)
	}
	if d, err := cfg.GatewayTimeout(); err != nil || d != time.Minute {
		t.Errorf("GatewayTimeout() = %v, %v, want 60s", d, err)
	}
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
communities:
  - CarTalk
  - MechanicAdvice
max_posts_per_community: 10
workers: 2
data_dir: /var/lib/carclinic
denylist:
  - Removed by moderator
language: en
gateway:
  model: llama3
  timeout: 90s
`))

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Communities) != 2 {
		t.Errorf("Communities = %v", cfg.Communities)
	}
	if cfg.MaxPostsPerCommunity != 10 || cfg.Workers != 2 {
		t.Errorf("overrides lost: max=%d workers=%d", cfg.MaxPostsPerCommunity, cfg.Workers)
	}
	if cfg.DataDir != "/var/lib/carclinic" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if len(cfg.Denylist) != 1 || cfg.Denylist[0] != "Removed by moderator" {
		t.Errorf("Denylist = %v", cfg.Denylist)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Gateway.Model != "llama3" || cfg.Gateway.Timeout != "90s" {
		t.Errorf("Gateway = %+v", cfg.Gateway)
	}
	// Unset gateway fields still get defaults.
	if cfg.Gateway.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("Gateway.BaseURL = %q", cfg.Gateway.BaseURL)
	}
}

func TestLoadConfig_RequiresCommunities(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() error = nil, want missing-communities error")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() error = nil, want read error")
	}
}
