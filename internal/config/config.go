package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by SKILLBRIDGE_STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config collects everything the api process needs from the environment.
type Config struct {
	Addr        string
	Environment string

	AuthSecret string
	TokenTTL   time.Duration

	StoreBackend string
	RedisURL     string
	PostgresDSN  string

	// VerifierURL points at the external identity verification service. Empty
	// disables registration-time verification (development only).
	VerifierURL string

	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load reads a .env file if present, then the environment. Missing optional
// values fall back to development defaults; a missing auth secret is fatal.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Addr:               getenv("SKILLBRIDGE_ADDR", ":8080"),
		Environment:        getenv("SKILLBRIDGE_ENV", "development"),
		AuthSecret:         os.Getenv("SKILLBRIDGE_AUTH_SECRET"),
		TokenTTL:           getenvDuration("SKILLBRIDGE_TOKEN_TTL", 24*time.Hour),
		StoreBackend:       getenv("SKILLBRIDGE_STORE_BACKEND", BackendMemory),
		RedisURL:           os.Getenv("SKILLBRIDGE_REDIS_URL"),
		PostgresDSN:        os.Getenv("SKILLBRIDGE_PG_DSN"),
		VerifierURL:        os.Getenv("SKILLBRIDGE_VERIFIER_URL"),
		RateLimitPerSecond: getenvInt("SKILLBRIDGE_RATE_LIMIT_RPS", 50),
		RateLimitBurst:     getenvInt("SKILLBRIDGE_RATE_LIMIT_BURST", 100),
	}

	if cfg.AuthSecret == "" {
		return nil, errors.New("SKILLBRIDGE_AUTH_SECRET is required but not set")
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("SKILLBRIDGE_REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("SKILLBRIDGE_PG_DSN is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
