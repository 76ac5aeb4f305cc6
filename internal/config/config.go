package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the configuration for the recommender service
type Config struct {
	Dataset DatasetConfig
	Index   IndexConfig
	Server  ServerConfig
	Log     LogConfig
}

// DatasetConfig describes where raw rows come from and how many are used
type DatasetConfig struct {
	Source         string        `validate:"oneof=csv hub"`
	Path           string        `validate:"required_if=Source csv"`
	HubURL         string        `validate:"omitempty,url"`
	HubName        string        `validate:"required_if=Source hub"`
	HubConfig      string        `validate:"required_if=Source hub"`
	HubSplit       string        `validate:"required_if=Source hub"`
	HubPageSize    int           `validate:"min=1,max=100"`
	HubRate        float64       `validate:"gt=0"`
	FetchLimit     int           `validate:"min=0"`
	MaxRows        int           `validate:"min=1"`
	Seed           uint64        `validate:"-"`
	Watch          bool          `validate:"-"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// IndexConfig holds similarity index settings
type IndexConfig struct {
	MaxFeatures int `validate:"min=1"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr    string `validate:"required"`
	MaxTopN int    `validate:"min=1"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:         GetStringEnv("DATASET_SOURCE", "csv"),
			Path:           GetStringEnv("DATASET_PATH", "./data/zomato.csv"),
			HubURL:         GetStringEnv("DATASET_HUB_URL", "https://datasets-server.huggingface.co/rows"),
			HubName:        GetStringEnv("DATASET_HUB_NAME", "ManikaSaini/zomato-restaurant-recommendation"),
			HubConfig:      GetStringEnv("DATASET_HUB_CONFIG", "default"),
			HubSplit:       GetStringEnv("DATASET_HUB_SPLIT", "train"),
			HubPageSize:    GetIntEnv("DATASET_HUB_PAGE_SIZE", 100),
			HubRate:        GetFloatEnv("DATASET_HUB_RATE", 5),
			FetchLimit:     GetIntEnv("DATASET_FETCH_LIMIT", 0),
			MaxRows:        GetIntEnv("DATASET_MAX_ROWS", 8000),
			Seed:           GetUintEnv("DATASET_SEED", 42),
			Watch:          GetBoolEnv("DATASET_WATCH", false),
			RequestTimeout: GetDurationEnv("DATASET_REQUEST_TIMEOUT", 30*time.Second),
		},
		Index: IndexConfig{
			MaxFeatures: GetIntEnv("INDEX_MAX_FEATURES", 4000),
		},
		Server: ServerConfig{
			Addr:    GetStringEnv("SERVER_ADDR", ":8080"),
			MaxTopN: GetIntEnv("SERVER_MAX_TOP_N", 100),
		},
		Log: LogConfig{
			Level: GetStringEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetUintEnv(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
