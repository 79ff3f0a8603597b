package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client tools and the fake backend
type Config struct {
	API struct {
		BaseURL   string
		Locale    string
		Timeout   time.Duration
		UserAgent string
	}

	Export struct {
		Sink string
		Dir  string
	}

	Minio struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		Prefix    string
		UseSSL    bool
	}

	Server struct {
		Port    string
		GinMode string
		Seed    bool
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	LogLevel    string
	MetricsFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.API.BaseURL = strings.TrimRight(getEnv("SIMRADAR_BASE_URL", "http://localhost:8080"), "/")
	config.API.Locale = getEnv("SIMRADAR_LOCALE", "en")
	config.API.Timeout = getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second)
	config.API.UserAgent = getEnv("SIMRADAR_USER_AGENT", "simradar-client/1.0")

	config.Export.Sink = getEnv("EXPORT_SINK", "file")
	config.Export.Dir = getEnv("EXPORT_DIR", "./exports")

	config.Minio.Endpoint = getEnv("MINIO_ENDPOINT", "localhost:9000")
	config.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	config.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", "")
	config.Minio.Bucket = getEnv("MINIO_BUCKET", "simradar-exports")
	config.Minio.Prefix = getEnv("MINIO_PREFIX", "participants")
	config.Minio.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Seed = getEnvAsBool("FAKEAPI_SEED", true)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,DELETE,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,X-Request-ID")

	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.MetricsFile = getEnv("METRICS_FILE", "")

	return config
}

// SplitList splits a comma separated setting such as CORS_ALLOW_ORIGINS
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15s") or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
