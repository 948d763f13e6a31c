// Package config loads sitegate configuration with layered precedence:
// built-in defaults, then an optional YAML file, then environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit
// wins.
var DefaultConfigPaths = []string{
	"sitegate.yaml",
	"sitegate.yml",
	"/etc/sitegate/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "SITEGATE_CONFIG"

// envPrefix namespaces all sitegate environment variables.
const envPrefix = "SITEGATE_"

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gate    GateConfig    `koanf:"gate"`
	Store   StoreConfig   `koanf:"store"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// GateConfig holds the site-lock parameters.
type GateConfig struct {
	// Secret seeds the session signing key. Required.
	Secret string `koanf:"secret"`
	// AdminIDs is the allow-list of administrator identities accepted
	// on the admin endpoints.
	AdminIDs []string `koanf:"admin_ids"`
	// RateLimitWindow and RateLimitAttempts shape the fixed-window
	// verification throttle.
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitAttempts int           `koanf:"rate_limit_attempts"`
}

// StoreConfig selects the settings store backend. When URL is set the
// remote REST store is used; otherwise the embedded database at Path.
type StoreConfig struct {
	Path      string        `koanf:"path"`
	URL       string        `koanf:"url"`
	AuthToken string        `koanf:"auth_token"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8780,
		},
		Gate: GateConfig{
			RateLimitWindow:   time.Minute,
			RateLimitAttempts: 5,
		},
		Store: StoreConfig{
			Path:    "./data/sitegate.db",
			Timeout: 8 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from defaults, file, and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// SITEGATE_SERVER_PORT -> server.port, SITEGATE_GATE_SECRET ->
	// gate.secret; only the first underscore separates section from key.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for operator errors.
func (c *Config) Validate() error {
	if c.Gate.Secret == "" {
		return fmt.Errorf("gate.secret is required (set SITEGATE_GATE_SECRET)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Gate.RateLimitWindow <= 0 {
		return fmt.Errorf("gate.rate_limit_window must be positive")
	}
	if c.Gate.RateLimitAttempts < 1 {
		return fmt.Errorf("gate.rate_limit_attempts must be at least 1")
	}
	if c.Store.URL == "" && c.Store.Path == "" {
		return fmt.Errorf("either store.url or store.path must be set")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be positive")
	}
	return nil
}

// ListenAddr returns the host:port to bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsAdmin reports whether id is on the configured admin allow-list.
func (c *Config) IsAdmin(id string) bool {
	for _, admin := range c.Gate.AdminIDs {
		if admin == id {
			return true
		}
	}
	return false
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
