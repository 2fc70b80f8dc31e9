package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Console  ConsoleConfig  `toml:"console"`
	Player   PlayerConfig   `toml:"player"`
	Ngrok    NgrokConfig    `toml:"ngrok"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `toml:"port"`
	Host         string `toml:"host"`
	EnableCORS   bool   `toml:"enable_cors"`
	ReadTimeout  int    `toml:"read_timeout_seconds"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
}

// APIConfig describes the upstream recommendation API
type APIConfig struct {
	BaseURL            string `toml:"base_url"`
	TimeoutSeconds     int    `toml:"timeout_seconds"` // 0 = no timeout
	CircuitBreaker     bool   `toml:"circuit_breaker"`
	HealthCacheSeconds int    `toml:"health_cache_seconds"`
}

// DatabaseConfig contains preference database configuration
type DatabaseConfig struct {
	Path           string `toml:"path"`
	MaxConnections int    `toml:"max_connections"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	File           string `toml:"file"`
	RequestLogging bool   `toml:"request_logging"`
}

// ConsoleConfig contains defaults for the console panels
type ConsoleConfig struct {
	DefaultUser         string `toml:"default_user"`
	DefaultTier         string `toml:"default_tier"`
	GenreLimit          int    `toml:"genre_limit"`
	NotificationSeconds int    `toml:"notification_seconds"`
	WatchConfig         bool   `toml:"watch_config"`
}

// PlayerConfig contains the playback simulator settings
type PlayerConfig struct {
	TrackSeconds int `toml:"track_seconds"`
	TickMillis   int `toml:"tick_millis"`
}

// NgrokConfig contains ngrok tunnel configuration
type NgrokConfig struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Host:         "0.0.0.0",
			EnableCORS:   true,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		API: APIConfig{
			BaseURL:            "http://localhost:5000/api",
			TimeoutSeconds:     0,
			CircuitBreaker:     false,
			HealthCacheSeconds: 10,
		},
		Database: DatabaseConfig{
			Path:           "./cadenza.db",
			MaxConnections: 4,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			File:           "",
			RequestLogging: true,
		},
		Console: ConsoleConfig{
			DefaultUser:         "1001",
			DefaultTier:         "all",
			GenreLimit:          20,
			NotificationSeconds: 3,
			WatchConfig:         false,
		},
		Player: PlayerConfig{
			TrackSeconds: 180,
			TickMillis:   1000,
		},
		Ngrok: NgrokConfig{
			Enabled: false,
		},
	}
}

// LoadConfig loads configuration from a TOML file, creating it with defaults
// when it does not exist. Environment overrides are applied last.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# Cadenza Recommendation Console Configuration
# api.base_url points at the recommendation REST API the console reads from.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api base url must start with http:// or https://: %s", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if c.Console.NotificationSeconds < 1 {
		return fmt.Errorf("notification delay must be at least 1 second")
	}
	if c.Console.GenreLimit < 1 {
		return fmt.Errorf("genre limit must be at least 1")
	}

	if c.Player.TrackSeconds < 1 {
		return fmt.Errorf("player track length must be at least 1 second")
	}
	if c.Player.TickMillis < 1 {
		return fmt.Errorf("player tick interval must be at least 1 millisecond")
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// NotificationDelay returns how long a notification stays visible
func (c *Config) NotificationDelay() time.Duration {
	return time.Duration(c.Console.NotificationSeconds) * time.Second
}

// TickInterval returns the playback simulator tick interval
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Player.TickMillis) * time.Millisecond
}

// APITimeout returns the upstream request timeout, zero meaning none
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// HealthCacheTTL returns how long an upstream health probe is reused
func (c *Config) HealthCacheTTL() time.Duration {
	return time.Duration(c.API.HealthCacheSeconds) * time.Second
}
