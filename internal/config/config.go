package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds process settings read from the environment.
type Config struct {
	Port             string
	DBDriver         string
	DBPath           string
	DatabaseURL      string
	OptimizerURL     string
	OptimizerTimeout time.Duration
	RedisURL         string
	ResultCacheTTL   time.Duration
	CORSOrigins      []string
	SeedPath         string
	LogLevel         string
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, d)
	}
	return d, nil
}

// Load reads the configuration. Call godotenv.Load first to honour a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:         Get("PORT", "8080"),
		DBDriver:     strings.ToLower(Get("DB_DRIVER", DriverSQLite)),
		DBPath:       Get("DB_PATH", "data/scenarios.db"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		OptimizerURL: strings.TrimRight(strings.TrimSpace(os.Getenv("OPTIMIZER_URL")), "/"),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),
		SeedPath:     Get("SEED_PATH", ""),
		LogLevel:     Get("LOG_LEVEL", "info"),
	}

	for _, o := range strings.Split(Get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	var err error
	if cfg.OptimizerTimeout, err = getDuration("OPTIMIZER_TIMEOUT", 120*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ResultCacheTTL, err = getDuration("RESULT_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// RequireOptimizer reports an error when no optimizer backend is configured.
func (c Config) RequireOptimizer() error {
	if c.OptimizerURL == "" {
		return errors.New("config: OPTIMIZER_URL is required")
	}
	return nil
}
