// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/csml-lang/csml-go/internal/data"
)

// Config represents the bot runtime configuration.
type Config struct {
	Bot       BotConfig       `toml:"bot"`
	Store     StoreConfig     `toml:"store"`     // Persistent Context storage
	HTTP      HTTPConfig      `toml:"http"`       // Outbound Http()/Fn() builtin settings
	Telemetry TelemetryConfig `toml:"telemetry"` // OTel exporter settings
	APIInfo   APIInfoConfig   `toml:"api_info"`  // Http()/Fn() credentials
}

// BotConfig contains bot identification settings.
type BotConfig struct {
	ID          string `toml:"id"`
	Manifest    string `toml:"manifest"`     // Path to the bot's manifest file
	DefaultFlow string `toml:"default_flow"` // Flow a brand-new Context starts in
}

// StoreConfig contains persistent Context storage settings.
type StoreConfig struct {
	Path    string `toml:"path"`    // sqlite database file
	Persist bool   `toml:"persist"` // true = context survives across runs, false = in-memory only
}

// HTTPConfig contains settings for the Http()/Fn() builtins' outbound
// requests.
type HTTPConfig struct {
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	MaxRetries      int    `toml:"max_retries"`      // Max retry attempts (default 3)
	RetryBackoff    string `toml:"retry_backoff"`     // Max backoff duration (default "30s")
	RateLimitPerSec int    `toml:"rate_limit_per_sec"` // 0 disables rate limiting
}

// TelemetryConfig contains OTel exporter settings.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	Protocol string `toml:"protocol"` // otlp-grpc, otlp-http, noop
}

// APIInfoConfig describes how to resolve the Http()/Fn() builtins'
// api_info: a fixed endpoint, plus a set of named credentials whose
// values are read from environment variables (populated from a
// sibling .env file via godotenv, the common secrets-via-env
// convention).
type APIInfoConfig struct {
	Endpoint        string            `toml:"endpoint"`
	CredentialEnvs  map[string]string `toml:"credential_envs"` // credential name -> env var name
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Bot: BotConfig{
			DefaultFlow: "main",
		},
		Store: StoreConfig{
			Path:    "./csml.db",
			Persist: true,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			MaxRetries:     3,
			RetryBackoff:   "30s",
		},
		Telemetry: TelemetryConfig{
			Protocol: "noop",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file, and, if a .env file
// sits alongside it, loads that into the process environment first so
// api_info credential lookups can resolve.
func LoadFile(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from csml.toml in the current
// directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFile(filepath.Join(cwd, "csml.toml"))
}

// ResolveAPIInfo builds the data.APIInfo a fresh Context should carry,
// resolving each configured credential name against its environment
// variable.
func (c *Config) ResolveAPIInfo() *data.APIInfo {
	info := &data.APIInfo{
		Endpoint:    c.APIInfo.Endpoint,
		Credentials: make(map[string]string, len(c.APIInfo.CredentialEnvs)),
	}
	for name, envVar := range c.APIInfo.CredentialEnvs {
		info.Credentials[name] = os.Getenv(envVar)
	}
	return info
}
