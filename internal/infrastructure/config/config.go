// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresURI string
	Migrate     bool

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Playback
	CallbackTimeout    time.Duration
	TaskAPITimeout     time.Duration
	LockTTL            time.Duration
	LockWait           time.Duration
	PlaybackLogEnabled bool

	// Kafka
	KafkaBootstrapServers []string
	KafkaPublishTimeout   time.Duration

	// Metrics
	MetricsNamespace string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 120)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", ""),
		Migrate:     getEnvAsBool("MIGRATE", false),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "flight_event_mock"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		CallbackTimeout: time.Duration(getEnvAsInt("API_TIMEOUT_MS", 15000)) * time.Millisecond,
		TaskAPITimeout:  time.Duration(getEnvAsInt("TASK_API_TIMEOUT_SECONDS", 5)) * time.Second,
		LockTTL:         time.Duration(getEnvAsInt("LOCK_TTL_SECONDS", 300)) * time.Second,
		LockWait:        time.Duration(getEnvAsInt("LOCK_WAIT_SECONDS", 30)) * time.Second,

		KafkaBootstrapServers: splitList(getEnv("KAFKA_BOOTSTRAP_SERVERS", "")),
		KafkaPublishTimeout:   time.Duration(getEnvAsInt("KAFKA_PUBLISH_TIMEOUT_SECONDS", 10)) * time.Second,

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "flight_event_mock"),
	}
	config.PlaybackLogEnabled = config.MongoURI != ""

	if config.PostgresURI == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if config.CallbackTimeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT_MS must be positive")
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "1" || strings.EqualFold(valueStr, "true")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
