// Package config provides configuration utilities for the application.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/valyzer/valyzer/internal/amadeus"
)

// LoadAmadeusConfig loads fare provider credentials from Viper and
// environment variables. Precedence:
// 1. Viper configuration (from config file or VALYZER_ env vars)
// 2. Direct environment variables (AMADEUS_*)
func LoadAmadeusConfig() amadeus.Config {
	cfg := amadeus.Config{
		ClientID:    viper.GetString("amadeus.client_id"),
		Secret:      viper.GetString("amadeus.client_secret"),
		Environment: viper.GetString("amadeus.environment"),
	}

	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("AMADEUS_CLIENT_ID")
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("AMADEUS_CLIENT_SECRET")
	}
	if cfg.Environment == "" {
		cfg.Environment = os.Getenv("AMADEUS_ENV")
	}

	return cfg
}

// DatabasePath returns the airport reference database location with path
// expansion applied.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = "$HOME/.local/share/valyzer/valyzer.db"
	}
	return ExpandPath(path)
}
