package main

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the server configuration, loaded from defaults and then
// FLATDB_-prefixed environment variables (FLATDB_ADDR, FLATDB_DATA_DIR,
// FLATDB_AUTH_ENABLED, FLATDB_JWT_SECRET, ...).
type Config struct {
	Addr     string `koanf:"addr"`
	DataDir  string `koanf:"data_dir"`
	LogLevel string `koanf:"log_level"`

	AuthEnabled bool   `koanf:"auth_enabled"`
	JWTSecret   string `koanf:"jwt_secret"`
	Issuer      string `koanf:"issuer"`
	Audience    string `koanf:"audience"`
}

func loadConfig() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"addr":         ":8080",
		"data_dir":     "",
		"log_level":    "info",
		"auth_enabled": false,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(env.Provider("FLATDB_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FLATDB_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth enabled but FLATDB_JWT_SECRET is not set")
	}
	return cfg, nil
}
