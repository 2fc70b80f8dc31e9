package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings
const (
	EnvAPIBaseURL = "CADENZA_API_BASE_URL"
	EnvPort       = "CADENZA_PORT"
	EnvNgrokToken = "NGROK_AUTHTOKEN"
)

// LoadDotEnv loads variables from a .env file if one exists. Variables already
// present in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overlays environment variables onto cfg
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		cfg.Server.Port = v
	}
	if cfg.Ngrok.AuthToken == "" {
		cfg.Ngrok.AuthToken = os.Getenv(EnvNgrokToken)
	}
}
