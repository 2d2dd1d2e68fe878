package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"anoa.com/boardinghouse/pkg/database"
	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	LogLevel       string

	Database database.Config
	RedisURL string

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	LoginThrottle time.Duration
	SeedAdminPass string
	BackfillCron  string

	// NotificationBackend is one of redis, memory or none. Empty picks redis
	// when RedisURL is set and memory otherwise.
	NotificationBackend string

	MeiliSearchHost string
	MeiliMasterKey  string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "boarding_house"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		SeedAdminPass: os.Getenv("SEED_ADMIN_PASSWORD"),
		BackfillCron:  getEnv("IDENTITY_BACKFILL_CRON", "@daily"),

		NotificationBackend: strings.ToLower(os.Getenv("NOTIFICATION_BACKEND")),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),
	}
	cfg.Database.Debug = cfg.AppEnv == "development" && cfg.LogLevel == "debug"

	var err error
	cfg.JWTAccessTTL, err = parseDuration(getEnv("JWT_ACCESS_TTL", "60m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTRefreshTTL, err = parseDuration(getEnv("JWT_REFRESH_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_TTL: %w", err)
	}
	cfg.LoginThrottle, err = parseDuration(getEnv("LOGIN_THROTTLE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_THROTTLE: %w", err)
	}

	switch cfg.NotificationBackend {
	case "":
		if cfg.RedisURL != "" {
			cfg.NotificationBackend = BackendRedis
		} else {
			cfg.NotificationBackend = BackendMemory
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("NOTIFICATION_BACKEND=redis requires REDIS_URL")
		}
	case BackendMemory, BackendNone:
	default:
		return nil, fmt.Errorf("invalid NOTIFICATION_BACKEND %q", cfg.NotificationBackend)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
