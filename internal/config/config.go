package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LocalStoreMemory = "memory"
	LocalStoreSQLite = "sqlite"
	LocalStoreRedis  = "redis"
)

type Config struct {
	Addr string

	// RemoteStoreURL and RemoteStoreKey locate the remote relational store.
	// The remote store is used only when both are set.
	RemoteStoreURL string
	RemoteStoreKey string

	LocalStore     string
	LocalStorePath string
	Redis          RedisConfig

	CatalogPollInterval time.Duration
	FeedSessionTTL      time.Duration

	AnthropicAPIKey string
	AnthropicModel  string

	JWTSecret     string
	AdminPassword string

	LogLevel         string
	CORSAllowOrigins string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RemoteConfigured reports whether both the remote endpoint and its credential are set.
func (c Config) RemoteConfigured() bool {
	return c.RemoteStoreURL != "" && c.RemoteStoreKey != ""
}

// Load reads an optional .env file (or the given files) into the environment,
// then builds the configuration from it. Variables already set win.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:             getenv("STOREFRONT_ADDR", ":8080"),
		RemoteStoreURL:   strings.TrimSpace(os.Getenv("REMOTE_STORE_URL")),
		RemoteStoreKey:   strings.TrimSpace(os.Getenv("REMOTE_STORE_KEY")),
		LocalStore:       strings.ToLower(getenv("LOCAL_STORE", LocalStoreMemory)),
		LocalStorePath:   getenv("LOCAL_STORE_PATH", "storefront.db"),
		AnthropicAPIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:   os.Getenv("ANTHROPIC_MODEL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		CORSAllowOrigins: getenv("CORS_ALLOW_ORIGINS", "*"),
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.Redis.DB, err = getenvInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CatalogPollInterval, err = getenvDuration("CATALOG_POLL_INTERVAL", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FeedSessionTTL, err = getenvDuration("FEED_SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LocalStore {
	case LocalStoreMemory:
	case LocalStoreSQLite:
		if c.LocalStorePath == "" {
			return errors.New("LOCAL_STORE_PATH is required for the sqlite local store")
		}
	case LocalStoreRedis:
		if c.Redis.Address == "" {
			return errors.New("REDIS_ADDRESS is required for the redis local store")
		}
	default:
		return fmt.Errorf("unknown LOCAL_STORE %q", c.LocalStore)
	}
	if c.CatalogPollInterval <= 0 {
		return errors.New("CATALOG_POLL_INTERVAL must be positive")
	}
	if c.FeedSessionTTL <= 0 {
		return errors.New("FEED_SESSION_TTL must be positive")
	}
	if c.AdminPassword != "" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when ADMIN_PASSWORD is set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
