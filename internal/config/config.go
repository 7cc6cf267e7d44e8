package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "Vesta"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultTokenDenom     = "vesta"
	defaultSupplyCap      = int64(1_000_000_000)
	defaultAdminAddress   = "acct:root"
	defaultAdminName      = "root"
	defaultAdminSecret    = "changeme-root"
	defaultJWTSecret      = "dev-jwt-secret"
	defaultRefreshSecret  = "dev-refresh-secret"
	defaultAccessTTL      = 15 * time.Minute
	defaultRefreshTTL     = 168 * time.Hour
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	TokenDenom      string
	SupplyCap       int64
	AdminAddress    string
	AdminName       string
	AdminSecret     string
	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. DATABASE_URL and REDIS_URL may be left unset outside production;
// the server then falls back to in-memory backends.
func Load() (Config, error) {
	cfg := Config{
		AppName:       getEnv("APP_NAME", defaultAppName),
		AppEnv:        getEnv("APP_ENV", defaultAppEnv),
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		TokenDenom:    getEnv("TOKEN_DENOM", defaultTokenDenom),
		AdminAddress:  getEnv("ADMIN_ADDRESS", defaultAdminAddress),
		AdminName:     getEnv("ADMIN_NAME", defaultAdminName),
		AdminSecret:   getEnv("ADMIN_SECRET", defaultAdminSecret),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		RefreshSecret: getEnv("REFRESH_SECRET", defaultRefreshSecret),
	}

	var err error
	if cfg.SupplyCap, err = int64Env("SUPPLY_CAP", defaultSupplyCap); err != nil {
		return Config{}, err
	}
	if cfg.SupplyCap <= 0 {
		return Config{}, fmt.Errorf("SUPPLY_CAP must be positive, got %d", cfg.SupplyCap)
	}

	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL_SECONDS", "ACCESS_TOKEN_TTL", defaultAccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = durationEnv("REFRESH_TOKEN_TTL_SECONDS", "REFRESH_TOKEN_TTL", defaultRefreshTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL_SECONDS", "IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if cfg.AppEnv == "production" {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set in production")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set in production")
		}
		if cfg.JWTSecret == defaultJWTSecret || cfg.RefreshSecret == defaultRefreshSecret || cfg.AdminSecret == defaultAdminSecret {
			return Config{}, fmt.Errorf("default secrets must be overridden in production")
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func int64Env(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// durationEnv resolves a duration from either a bare-seconds variable or a
// Go duration string variable, preferring the former.
func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}
