package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Redis   RedisConfig
	DB      DBConfig
	Auth    AuthConfig
	Sync    SyncConfig
}

type ServerConfig struct {
	Addr string
}

// CatalogConfig points at the upstream product service.
type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig is optional: without an address the gateway falls back to
// the in-memory listing cache and the polling reconciler.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	// bcrypt hash of the admin API token (X-Admin-Token header)
	AdminTokenHash string
}

// SyncConfig tunes the completion reconciler. Defaults match the
// dashboard behaviour: 120s push fallback, 1s..5s poll backoff with a
// 2 minute ceiling.
type SyncConfig struct {
	FallbackAfter time.Duration
	PollInitial   time.Duration
	PollMax       time.Duration
	PollCeiling   time.Duration
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("CATALOG_TIMEOUT", "30s")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("DB_DSN", "")
	viper.SetDefault("ADMIN_TOKEN_HASH", "")
	viper.SetDefault("SYNC_FALLBACK_AFTER", "120s")
	viper.SetDefault("SYNC_POLL_INITIAL", "1s")
	viper.SetDefault("SYNC_POLL_MAX", "5s")
	viper.SetDefault("SYNC_POLL_CEILING", "2m")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Addr: viper.GetString("SERVER_ADDR"),
		},
		Catalog: CatalogConfig{
			BaseURL: viper.GetString("CATALOG_BASE_URL"),
			Timeout: viper.GetDuration("CATALOG_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		DB: DBConfig{
			DSN: viper.GetString("DB_DSN"),
		},
		Auth: AuthConfig{
			AdminTokenHash: viper.GetString("ADMIN_TOKEN_HASH"),
		},
		Sync: SyncConfig{
			FallbackAfter: viper.GetDuration("SYNC_FALLBACK_AFTER"),
			PollInitial:   viper.GetDuration("SYNC_POLL_INITIAL"),
			PollMax:       viper.GetDuration("SYNC_POLL_MAX"),
			PollCeiling:   viper.GetDuration("SYNC_POLL_CEILING"),
		},
	}

	if cfg.Catalog.BaseURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL is required")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	return cfg, nil
}
