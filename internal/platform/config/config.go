package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean and deployments stay twelve-factor.
type Config struct {
	Addr          string
	JWTSigningKey string

	// AdminToken guards operator endpoints; empty disables them.
	AdminToken string

	// PostgresDSN selects the durable stores; empty means in-memory.
	PostgresDSN string

	Redis RedisConfig

	Providers ProviderConfig

	// ConfirmationTTL bounds how long a paid-query offer stays actionable.
	ConfirmationTTL time.Duration
}

// RedisConfig holds connection settings for the Redis-backed rate window
// store. An empty URL disables Redis and falls back to in-memory counters.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ProviderConfig selects and parameterizes the data-source adapters.
type ProviderConfig struct {
	// UseMocks wires deterministic in-process providers instead of real
	// vendor clients. Wiring-time choice; there is no runtime switching.
	UseMocks bool

	SurepassAPIKey  string
	SurepassBaseURL string
	SignzyAPIKey    string
	SignzyBaseURL   string

	// Timeout applies per provider call; an elapsed timeout is recorded as a
	// provider failure, not a system failure.
	Timeout time.Duration
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	return Config{
		Addr:          envOr("PICKME_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		PostgresDSN:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Providers: ProviderConfig{
			UseMocks:        os.Getenv("PROVIDERS_USE_MOCKS") == "true",
			SurepassAPIKey:  os.Getenv("SUREPASS_API_KEY"),
			SurepassBaseURL: envOr("SUREPASS_BASE_URL", "https://kyc-api.surepass.io/api/v1"),
			SignzyAPIKey:    os.Getenv("SIGNZY_API_KEY"),
			SignzyBaseURL:   envOr("SIGNZY_BASE_URL", "https://api.signzy.com/api/v3"),
			Timeout:         envDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
		ConfirmationTTL: envDuration("CONFIRMATION_TTL", 5*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
