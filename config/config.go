// Package config is the app-level JSON settings file.
package config

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	LastDirectory       string  `json:"last_directory"`
	StayOnTop           bool    `json:"stay_on_top"`
	KeyCooldown         float64 `json:"key_cooldown"`
	WindowCheckInterval float64 `json:"window_check_interval"`
}

// Path returns the settings file location, overridable by env.
func Path() string {
	if p := os.Getenv("AUTOPLAY_CONFIG"); p != "" {
		return p
	}
	return "config.json"
}

func Default() Config {
	return Config{
		KeyCooldown:         0.2,
		WindowCheckInterval: 0.2,
	}
}

// Load reads the config file, falling back to defaults for missing or
// unreadable files.
func Load(path string) Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("could not read config, using defaults")
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		logrus.WithError(err).Warn("could not parse config, using defaults")
		return Default()
	}
	return cfg
}

func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
