package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by VITALS_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamo   = "dynamodb"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	VitalsStore       string
	DatabaseURL       string
	AuditDatabaseURL  string
	VitalsTable       string
	VitalsListLimit   int
	CacheTTL          time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	UserJWTSecret     string
	CORSAllowedOrigin []string
	RateLimitPerSec   float64
	RateLimitBurst    int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	AlertQueueURL       string
	ArchiveBucket       string
	AlertPollWait       int
	AlertBatchSize      int

	EmailProvider    string
	EmailFromAddress string
	EmailFromName    string
	SendGridAPIKey   string
}

// LoadDotEnv reads a local .env file into the process environment. A missing file is
// not an error; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VitalsStore:       strings.ToLower(strings.TrimSpace(getEnv("VITALS_STORE", StoreMemory))),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AuditDatabaseURL:  getEnv("AUDIT_DATABASE_URL", ""),
		VitalsTable:       getEnv("VITALS_DYNAMO_TABLE", "vitals_readings"),
		VitalsListLimit:   getEnvAsInt("VITALS_LIST_LIMIT", 50),
		CacheTTL:          getEnvAsDuration("VITALS_CACHE_TTL", 10*time.Minute),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		UserJWTSecret:     getEnv("USER_JWT_SECRET", ""),
		CORSAllowedOrigin: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitPerSec:   getEnvAsFloat("RATE_LIMIT_PER_SEC", 5),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 20),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		AlertQueueURL:       getEnv("ALERT_QUEUE_URL", ""),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", ""),
		AlertPollWait:       getEnvAsInt("ALERT_POLL_WAIT_SECONDS", 20),
		AlertBatchSize:      getEnvAsInt("ALERT_BATCH_SIZE", 5),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "EMS Alerts"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
