package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Engine    EngineConfig
	RateLimit RateLimitConfig
	Tiers     entities.TierCatalog
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration. An empty URL disables redis-backed
// components (session store, idempotency, shared rate windows).
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds secrets the process refuses to start without.
type SecurityConfig struct {
	// APIKeyHashSecret keys the credential digest. It is required, never
	// logged, and rotating it invalidates every issued key.
	APIKeyHashSecret     string
	SessionEncryptionKey string
}

// EngineConfig points at the ensemble scoring service. An empty URL selects
// the baseline fallback engine.
type EngineConfig struct {
	ScorerURL string
	Timeout   time.Duration
}

// RateLimitConfig holds the short-window limiter settings.
type RateLimitConfig struct {
	Window       time.Duration
	AnonymousCap int
}

// Load loads configuration from environment variables. It returns an error
// for missing required secrets so the caller can refuse to start.
func Load() (*Config, error) {
	hashSecret := os.Getenv("API_KEY_HASH_SECRET")
	if hashSecret == "" {
		return nil, fmt.Errorf("API_KEY_HASH_SECRET is required")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "equine_oracle"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			APIKeyHashSecret:     hashSecret,
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Engine: EngineConfig{
			ScorerURL: getEnv("SCORER_URL", ""),
			Timeout:   getEnvAsDuration("SCORER_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Window:       getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
			AnonymousCap: getEnvAsInt("ANONYMOUS_RATE_LIMIT", 10),
		},
		Tiers: loadTiers(),
	}, nil
}

// loadTiers builds the tier catalog. Limits are env-overridable per tier so
// a plan change does not need a rebuild.
func loadTiers() entities.TierCatalog {
	return entities.TierCatalog{
		entities.TierFree: {
			Name:                   entities.TierFree,
			MaxPredictionsPerDay:   getEnvAsInt("TIER_FREE_DAILY", 10),
			MaxPredictionsPerMonth: getEnvAsInt("TIER_FREE_MONTHLY", 100),
			RequestsPerMinute:      getEnvAsInt("TIER_FREE_RPM", 10),
		},
		entities.TierBasic: {
			Name:                   entities.TierBasic,
			MaxPredictionsPerDay:   getEnvAsInt("TIER_BASIC_DAILY", 100),
			MaxPredictionsPerMonth: getEnvAsInt("TIER_BASIC_MONTHLY", 2000),
			RequestsPerMinute:      getEnvAsInt("TIER_BASIC_RPM", 30),
			APIAccess:              true,
			MonthlyPriceUSD:        29,
		},
		entities.TierPremium: {
			Name:                   entities.TierPremium,
			MaxPredictionsPerDay:   getEnvAsInt("TIER_PREMIUM_DAILY", 500),
			MaxPredictionsPerMonth: getEnvAsInt("TIER_PREMIUM_MONTHLY", 10000),
			RequestsPerMinute:      getEnvAsInt("TIER_PREMIUM_RPM", 120),
			APIAccess:              true,
			CustomModels:           true,
			MonthlyPriceUSD:        99,
		},
		entities.TierElite: {
			Name:                   entities.TierElite,
			MaxPredictionsPerDay:   getEnvAsInt("TIER_ELITE_DAILY", 2000),
			MaxPredictionsPerMonth: entities.UnlimitedMonthly,
			RequestsPerMinute:      getEnvAsInt("TIER_ELITE_RPM", 300),
			APIAccess:              true,
			CustomModels:           true,
			PrioritySupport:        true,
			MonthlyPriceUSD:        299,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
