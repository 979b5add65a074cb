package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	JWTSecret           string
	GoogleProjectID     string
	FirebaseCredentials string
	LocalStorePath      string
	SwipeRateLimit      int
	SwipeRateWindow     time.Duration
	DetailsCacheTTL     time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	rateWindow := time.Hour
	if w := os.Getenv("SWIPE_RATE_WINDOW"); w != "" {
		if parsed, err := time.ParseDuration(w); err == nil {
			rateWindow = parsed
		}
	}

	cacheTTL := 5 * time.Minute
	if ttl := os.Getenv("DETAILS_CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			cacheTTL = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		LocalStorePath:      getEnv("LOCAL_STORE_PATH", "circld-cache.db"),
		SwipeRateLimit:      getEnvInt("SWIPE_RATE_LIMIT", 100),
		SwipeRateWindow:     rateWindow,
		DetailsCacheTTL:     cacheTTL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
