package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type BasicConfig struct {
	ServerAddress     string `json:"server_address"`
	UploadDir         string `json:"upload_dir"`
	FiguresDir        string `json:"figures_dir"`
	Provider          string `json:"provider"`
	HistoryCap        int    `json:"history_cap"`
	RecentWindow      int    `json:"recent_window"`
	LLMTimeoutSeconds int    `json:"llm_timeout_seconds"`
	FileTTLMinutes    int    `json:"file_ttl_minutes"`
	CleanIntervalMin  int    `json:"clean_interval_minutes"`
	SessionBackend    string `json:"session_backend"`
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing default config file is not an error: the service can run entirely
// on env-provided settings.
func Load(path string) (*Config, error) {
	// Secrets such as OPENROUTER_API_KEY come from .env when present.
	_ = godotenv.Load()

	explicit := path != ""
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := &Config{}
	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	b := &c.BasicConfig
	if b.ServerAddress == "" {
		b.ServerAddress = ":8000"
	}
	if b.UploadDir == "" {
		b.UploadDir = "uploads"
	}
	if b.FiguresDir == "" {
		b.FiguresDir = "figures"
	}
	if b.Provider == "" {
		b.Provider = "openai"
	}
	if b.HistoryCap <= 0 {
		b.HistoryCap = 10
	}
	if b.RecentWindow <= 0 {
		b.RecentWindow = 3
	}
	if b.LLMTimeoutSeconds <= 0 {
		b.LLMTimeoutSeconds = 20
	}
	if b.FileTTLMinutes <= 0 {
		b.FileTTLMinutes = 24 * 60
	}
	if b.CleanIntervalMin <= 0 {
		b.CleanIntervalMin = 60
	}
	if b.SessionBackend == "" {
		b.SessionBackend = "memory"
	}

	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	// The OpenRouter deployment is the openai provider with a custom base URL.
	if _, ok := c.Providers["openai"]; !ok {
		c.Providers["openai"] = ProviderConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "openai/gpt-3.5-turbo",
		}
	}
	for name, p := range c.Providers {
		if p.APIKey == "" {
			p.APIKey = apiKeyFromEnv(name)
			c.Providers[name] = p
		}
	}

	if c.Databases == nil {
		c.Databases = map[string]DatabaseConfig{
			"sqlite3": {DSN: "datasoph.db"},
		}
	}
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case "openai":
		if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("OPENAI_API_KEY")
	case "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}
