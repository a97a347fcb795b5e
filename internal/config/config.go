package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment variables
// and an optional YAML file.
type Config struct {
	Port string `yaml:"port"`
	// DatabaseURL enables the tournament results store when set.
	DatabaseURL string `yaml:"database_url"`
	// RedisURL enables live progress publishing when set.
	RedisURL  string `yaml:"redis_url"`
	JWTSecret string `yaml:"jwt_secret"`

	Workers      int    `yaml:"num_threads"`
	NoAmmoRounds int    `yaml:"no_ammo_rounds"`
	OutputDir    string `yaml:"output_dir"`
	// ModuleArgs are passed to out-of-process algorithm executables.
	ModuleArgs []string `yaml:"module_args"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:         envOrDefault("PORT", "8009"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		JWTSecret:    envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		Workers:      envIntOrDefault("TANKS_WORKERS", 1),
		NoAmmoRounds: envIntOrDefault("TANKS_NO_AMMO_ROUNDS", 40),
		OutputDir:    os.Getenv("TANKS_OUTPUT_DIR"),
	}
}

// LoadFile reads the environment and overlays the YAML file at path. Keys
// missing from the file keep their environment value.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("parse config %s: num_threads must be at least 1, got %d", path, cfg.Workers)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
