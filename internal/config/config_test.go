package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := cfg.BasicConfig
	if b.ServerAddress != ":8000" || b.UploadDir != "uploads" || b.FiguresDir != "figures" {
		t.Errorf("basic defaults = %+v", b)
	}
	if b.HistoryCap != 10 || b.RecentWindow != 3 {
		t.Errorf("history defaults = cap %d, window %d", b.HistoryCap, b.RecentWindow)
	}
	if b.SessionBackend != "memory" {
		t.Errorf("session backend = %s", b.SessionBackend)
	}
	if p, ok := cfg.Providers["openai"]; !ok || p.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("openai provider = %+v", cfg.Providers["openai"])
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("explicit missing config did not error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"basic_config": {"server_address": ":9100", "history_cap": 4},
		"providers": {"claude": {"model": "claude-3-5-haiku", "api_key": "k"}}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BasicConfig.ServerAddress != ":9100" {
		t.Errorf("server address = %s", cfg.BasicConfig.ServerAddress)
	}
	if cfg.BasicConfig.HistoryCap != 4 {
		t.Errorf("history cap = %d", cfg.BasicConfig.HistoryCap)
	}
	// Unset fields still pick up defaults.
	if cfg.BasicConfig.RecentWindow != 3 {
		t.Errorf("recent window = %d", cfg.BasicConfig.RecentWindow)
	}
	if cfg.Providers["claude"].APIKey != "k" {
		t.Errorf("claude provider = %+v", cfg.Providers["claude"])
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "router-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	if got := apiKeyFromEnv("openai"); got != "router-key" {
		t.Errorf("openai key = %s, want OPENROUTER_API_KEY to win", got)
	}
	t.Setenv("OPENROUTER_API_KEY", "")
	if got := apiKeyFromEnv("openai"); got != "openai-key" {
		t.Errorf("openai key = %s, want OPENAI_API_KEY fallback", got)
	}
	t.Setenv("GEMINI_API_KEY", "g")
	if got := apiKeyFromEnv("gemini"); got != "g" {
		t.Errorf("gemini key = %s", got)
	}
	if got := apiKeyFromEnv("unknown"); got != "" {
		t.Errorf("unknown provider key = %s", got)
	}
}
