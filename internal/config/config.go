// Package config resolves server settings env-first, with an optional
// YAML file (RUSH24_CONFIG) layered on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr             string `yaml:"addr"`
	Env              string `yaml:"env"`
	HeartbeatSeconds int    `yaml:"heartbeat_seconds"`
}

// Load reads PORT (or RUSH24_PORT) and RUSH24_ENV, then applies the YAML
// file named by RUSH24_CONFIG when set.
func Load() (Config, error) {
	cfg := Config{
		Addr:             ":" + getenv("PORT", getenv("RUSH24_PORT", "8081")),
		Env:              getenv("RUSH24_ENV", "prod"),
		HeartbeatSeconds: 30,
	}
	if path := os.Getenv("RUSH24_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	return cfg, nil
}

func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// Dev reports whether console-friendly logging should be used.
func (c Config) Dev() bool { return c.Env == "dev" }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
