// Package config reads the environment and the saved scan profiles.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rendis/gridplaces/internal/engine/archive"
)

// Config holds settings that come from the environment (or a .env file).
type Config struct {
	APIKey    string
	Language  string
	PlacesURL string

	Redis RedisConfig
	MinIO archive.Config

	SheetsCredentialsFile string
	LogDir                string
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		APIKey:    getEnv("GOOGLE_MAPS_API_KEY", ""),
		Language:  getEnv("GRIDPLACES_LANGUAGE", "en"),
		PlacesURL: getEnv("GRIDPLACES_PLACES_URL", ""),
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: time.Duration(getEnvAsInt("GRIDPLACES_CACHE_TTL", 24*7)) * time.Hour,
		},
		MinIO: archive.Config{
			Endpoint:        getEnv("MINIO_ENDPOINT", ""),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("MINIO_BUCKET_NAME", "gridplaces"),
			UseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
			PublicURL:       getEnv("MINIO_RETURN_URL", ""),
		},
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
		LogDir:                getEnv("GRIDPLACES_LOG_DIR", ""),
	}, nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
