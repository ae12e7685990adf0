package common

import (
	"os"
	"strconv"
	"time"

	"github.com/adityakhanna/vouched/constants"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Identity  IdentityConfig
	Queue     QueueConfig
	Embedding EmbeddingConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// IdentityConfig holds service identity resolution configuration
type IdentityConfig struct {
	ConflictPolicy constants.ConflictPolicy
}

// QueueConfig holds embedding task queue configuration
type QueueConfig struct {
	MaxConcurrent int
	MaxRetries    int
	RetryDelay    time.Duration
	TaskTimeout   time.Duration
	PollInterval  time.Duration
	BatchSize     int
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Identity: IdentityConfig{
			ConflictPolicy: constants.ConflictPolicy(getEnv("IDENTITY_CONFLICT_POLICY", string(constants.ConflictAutoMerge))),
		},
		Queue: QueueConfig{
			MaxConcurrent: getEnvAsInt("QUEUE_MAX_CONCURRENT", 3),
			MaxRetries:    getEnvAsInt("QUEUE_MAX_RETRIES", 3),
			RetryDelay:    getEnvAsDuration("QUEUE_RETRY_DELAY", 5*time.Second),
			TaskTimeout:   getEnvAsDuration("QUEUE_TASK_TIMEOUT", 2*time.Minute),
			PollInterval:  getEnvAsDuration("QUEUE_POLL_INTERVAL", 200*time.Millisecond),
			BatchSize:     getEnvAsInt("QUEUE_BATCH_SIZE", 5),
		},
		Embedding: EmbeddingConfig{
			BaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("EMBEDDING_API_KEY", ""),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout: getEnvAsDuration("EMBEDDING_TIMEOUT", 45*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Embedding.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "EMBEDDING_API_KEY is required", ErrInvalidInput)
	}
	switch c.Identity.ConflictPolicy {
	case constants.ConflictAutoMerge, constants.ConflictFlagForReview:
	default:
		return NewAppError("CONFIG_ERROR", "IDENTITY_CONFLICT_POLICY must be auto-merge or flag-for-review", ErrInvalidInput)
	}
	if c.Queue.MaxConcurrent < 1 {
		return NewAppError("CONFIG_ERROR", "QUEUE_MAX_CONCURRENT must be at least 1", ErrInvalidInput)
	}
	return nil
}
