package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Player.TrackSeconds != 180 {
		t.Errorf("TrackSeconds = %d, want 180", cfg.Player.TrackSeconds)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default config file to be written: %v", err)
	}

	// The written file must round-trip
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() on written defaults error = %v", err)
	}
	if again.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", again.API.BaseURL, cfg.API.BaseURL)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "http://reco.internal:9000/api"
timeout_seconds = 5

[console]
notification_seconds = 4
genre_limit = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "http://reco.internal:9000/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.APITimeout() != 5*time.Second {
		t.Errorf("APITimeout() = %v, want 5s", cfg.APITimeout())
	}
	if cfg.NotificationDelay() != 4*time.Second {
		t.Errorf("NotificationDelay() = %v, want 4s", cfg.NotificationDelay())
	}
	// Untouched sections keep their defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://env.example/api")
	t.Setenv(EnvPort, "9999")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "https://env.example/api" {
		t.Errorf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.GetAddress() != "0.0.0.0:9999" {
		t.Errorf("GetAddress() = %q", cfg.GetAddress())
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv() on missing file = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"base url without scheme", func(c *Config) { c.API.BaseURL = "localhost:5000" }, true},
		{"negative api timeout", func(c *Config) { c.API.TimeoutSeconds = -1 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero notification delay", func(c *Config) { c.Console.NotificationSeconds = 0 }, true},
		{"zero track length", func(c *Config) { c.Player.TrackSeconds = 0 }, true},
		{"zero tick", func(c *Config) { c.Player.TickMillis = 0 }, true},
		{"zero db connections", func(c *Config) { c.Database.MaxConnections = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := DefaultConfig().SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, logger, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://changed:1234/api"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.API.BaseURL != "http://changed:1234/api" {
			t.Errorf("reloaded BaseURL = %q", got.API.BaseURL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not picked up")
	}
}
