package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the dispatch engine.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session Config
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Blob storage for report images
	BlobDir           string `env:"BLOB_DIR" envDefault:"./data/blobs"`
	BlobPublicBaseURL string `env:"BLOB_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/blobs"`
	ImageBucket       string `env:"IMAGE_BUCKET" envDefault:"accident-images"`

	// Dispatch quotas and feed limits
	HospitalQuota  int `env:"DISPATCH_HOSPITAL_QUOTA" envDefault:"1"`
	PoliceQuota    int `env:"DISPATCH_POLICE_QUOTA" envDefault:"1"`
	AmbulanceQuota int `env:"DISPATCH_AMBULANCE_QUOTA" envDefault:"3"`
	FeedLimit      int `env:"FEED_LIMIT" envDefault:"4"`

	// Feed synchronizer
	FeedRefreshInterval time.Duration `env:"FEED_REFRESH_INTERVAL" envDefault:"30s"`

	// Dispatch notification webhook
	DispatchWebhookURL string        `env:"DISPATCH_WEBHOOK_URL"`
	DispatchSecret     string        `env:"DISPATCH_WEBHOOK_SECRET"`
	DispatchTimeout    time.Duration `env:"DISPATCH_WEBHOOK_TIMEOUT" envDefault:"5s"`
	DispatchMaxRetries int           `env:"DISPATCH_WEBHOOK_MAX_RETRIES" envDefault:"3"`
	DispatchBaseDelay  time.Duration `env:"DISPATCH_WEBHOOK_BASE_DELAY" envDefault:"1s"`
}

// LoadConfig reads configuration from the environment and an optional .env
// file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		BlobDir:             getEnv("BLOB_DIR", "./data/blobs"),
		BlobPublicBaseURL:   getEnv("BLOB_PUBLIC_BASE_URL", "http://localhost:8080/blobs"),
		ImageBucket:         getEnv("IMAGE_BUCKET", "accident-images"),
		HospitalQuota:       getEnvAsInt("DISPATCH_HOSPITAL_QUOTA", 1),
		PoliceQuota:         getEnvAsInt("DISPATCH_POLICE_QUOTA", 1),
		AmbulanceQuota:      getEnvAsInt("DISPATCH_AMBULANCE_QUOTA", 3),
		FeedLimit:           getEnvAsInt("FEED_LIMIT", 4),
		FeedRefreshInterval: getEnvAsDuration("FEED_REFRESH_INTERVAL", 30*time.Second),
		DispatchWebhookURL:  os.Getenv("DISPATCH_WEBHOOK_URL"),
		DispatchSecret:      os.Getenv("DISPATCH_WEBHOOK_SECRET"),
		DispatchTimeout:     getEnvAsDuration("DISPATCH_WEBHOOK_TIMEOUT", 5*time.Second),
		DispatchMaxRetries:  getEnvAsInt("DISPATCH_WEBHOOK_MAX_RETRIES", 3),
		DispatchBaseDelay:   getEnvAsDuration("DISPATCH_WEBHOOK_BASE_DELAY", time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the value of an environment variable as int or a default.
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration returns the value of an environment variable as
// time.Duration or a default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
