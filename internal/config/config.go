package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Matching  MatchingConfig
	Surge     SurgeConfig
	RateLimit RateLimitConfig
	NewRelic  NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MatchingConfig holds matching engine tunables.
type MatchingConfig struct {
	InitialRadiusKm  float64
	ExpandedRadiusKm float64
	CandidateCount   int
	OfferTTL         time.Duration
	MaxOffersPerRide int
	ExpiryPollEvery  time.Duration
}

// SurgeConfig holds surge pricing tunables.
type SurgeConfig struct {
	MaxMultiplier  float64
	SupplyRadiusKm float64
}

// RateLimitConfig holds the per-IP request limiter settings.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "rideflux"),
			Password: getEnv("DB_PASSWORD", "rideflux_secret"),
			DBName:   getEnv("DB_NAME", "rideflux"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Matching: MatchingConfig{
			InitialRadiusKm:  getFloatEnv("MATCH_RADIUS_INITIAL_KM", 2.0),
			ExpandedRadiusKm: getFloatEnv("MATCH_RADIUS_EXPANDED_KM", 5.0),
			CandidateCount:   getIntEnv("MATCH_CANDIDATE_COUNT", 10),
			OfferTTL:         getDurationEnv("OFFER_TTL", 20*time.Second),
			MaxOffersPerRide: getIntEnv("MAX_OFFERS_PER_RIDE", 3),
			ExpiryPollEvery:  getDurationEnv("OFFER_EXPIRY_POLL_INTERVAL", time.Second),
		},
		Surge: SurgeConfig{
			MaxMultiplier:  getFloatEnv("SURGE_MAX_MULTIPLIER", 3.0),
			SupplyRadiusKm: getFloatEnv("SURGE_SUPPLY_RADIUS_KM", 3.0),
		},
		RateLimit: RateLimitConfig{
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			MaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "rideflux"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
