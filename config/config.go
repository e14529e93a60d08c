// Package config loads the settings of the fii command from the environment,
// an optional .env file and the store.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/carteira/store"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the application configuration.
type Config struct {
	DataDir  string        // where the store lives
	Store    string        // "dir" or "sqlite"
	RedisURL string        // optional cache server
	APIKey   string        // from the environment, wins over the stored key
	Model    string        // Gemini model name
	LogLevel zerolog.Level // diagnostics on stderr
}

// Load reads configuration from environment variables, after loading a .env
// file of the working directory if there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("FII_LOG_LEVEL", "warn")))
	if err != nil {
		return nil, fmt.Errorf("invalid FII_LOG_LEVEL: %w", err)
	}
	cfg := &Config{
		DataDir:  getEnv("FII_DATA_DIR", defaultDataDir()),
		Store:    getEnv("FII_STORE", "dir"),
		RedisURL: getEnv("FII_REDIS_URL", ""),
		APIKey:   getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		Model:    getEnv("FII_MODEL", "gemini-2.5-flash"),
		LogLevel: level,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that Load cannot default.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("FII_DATA_DIR is required")
	}
	switch c.Store {
	case "dir", "sqlite":
	default:
		return fmt.Errorf("invalid FII_STORE %q, want dir or sqlite", c.Store)
	}
	return nil
}

// OpenStore opens the store selected by the configuration.
func (c *Config) OpenStore(ctx context.Context) (store.Store, func() error, error) {
	switch c.Store {
	case "sqlite":
		s, err := store.OpenSQLite(ctx, filepath.Join(c.DataDir, "fii.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := store.OpenDir(c.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
}

// ResolveAPIKey returns the API key of the environment or, if none, the one
// saved in the store. It returns "" when there is none.
func (c *Config) ResolveAPIKey(ctx context.Context, s store.Store) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	key, err := s.Get(ctx, store.APIKeyKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot read the API key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// defaultDataDir is $XDG_CONFIG_HOME/fii or ~/.fii.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fii")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".fii")
	}
	return ".fii"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
