// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPListenAddr   string `envconfig:"HTTP_LISTEN_ADDR" default:":8080"`
	PublicBasePath   string `envconfig:"PUBLIC_BASE_PATH" default:""`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"ussd_manager"`

	// When DatabaseURL is set the Postgres (Supabase) repository is used,
	// otherwise a local SQLite database at SQLitePath.
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	DatabaseSchema string `envconfig:"DATABASE_SCHEMA" default:""`
	SQLitePath     string `envconfig:"SQLITE_PATH" default:"./ussd_manager.db"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisTLS      bool   `envconfig:"REDIS_TLS" default:"false"`

	AuthCacheTTL time.Duration `envconfig:"AUTH_CACHE_TTL" default:"5m"`

	SIMDailyLimit  int           `envconfig:"SIM_DAILY_LIMIT" default:"20"`
	DispatchSlot   int           `envconfig:"DISPATCH_SIM_SLOT" default:"1"`
	SimulatedDelay time.Duration `envconfig:"DISPATCH_SIMULATED_DELAY" default:"1500ms"`
	BridgeDelay    time.Duration `envconfig:"BRIDGE_SIMULATED_DELAY" default:"2s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	if cfg.DispatchSlot != 1 && cfg.DispatchSlot != 2 {
		return nil, fmt.Errorf("DISPATCH_SIM_SLOT must be 1 or 2, got %d", cfg.DispatchSlot)
	}
	return &cfg, nil
}
