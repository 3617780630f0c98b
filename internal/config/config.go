package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream HaloSani API
	API APIConfig

	// Gate HTTP server
	Server ServerConfig

	// Session storage
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds the upstream REST API configuration
type APIConfig struct {
	BaseURL string
}

// ServerConfig holds the gate's own HTTP listener configuration
type ServerConfig struct {
	Port string
	// AllowedOrigin is the SPA origin allowed by CORS
	AllowedOrigin string
}

// SessionConfig holds session-store configuration
type SessionConfig struct {
	Backend       string // sqlite, redis, memory
	DatabaseURL   string // sqlite file path
	RedisAddress  string // Redis address (host:port)
	Secret        string // HS256 secret for the visitor sid cookie
	PruneSchedule string // Cron expression, empty = no pruning
	RetentionDays int    // Idle sessions older than this are pruned, 0 = keep forever
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	retentionDays := 0
	if raw := os.Getenv("SESSION_RETENTION_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}

	return &Config{
		API: APIConfig{
			BaseURL: envOr("HALOSANI_API_URL", "http://localhost:8000"),
		},
		Server: ServerConfig{
			Port:          envOr("PORT", "8080"),
			AllowedOrigin: envOr("ALLOWED_ORIGIN", "http://localhost:5173"),
		},
		Session: SessionConfig{
			Backend:       envOr("SESSION_BACKEND", "sqlite"),
			DatabaseURL:   envOr("DATABASE_URL", "halosani.sqlite"),
			RedisAddress:  envOr("REDIS_ADDRESS", "localhost:6379"),
			Secret:        envOr("SESSION_SECRET", ""),
			PruneSchedule: os.Getenv("SESSION_PRUNE_SCHEDULE"),
			RetentionDays: retentionDays,
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
