package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cuisine-engine/backend/internal/config"
)

var envKeys = []string{
	"DATASET_SOURCE", "DATASET_PATH", "DATASET_HUB_URL", "DATASET_HUB_NAME",
	"DATASET_HUB_CONFIG", "DATASET_HUB_SPLIT", "DATASET_HUB_PAGE_SIZE",
	"DATASET_HUB_RATE", "DATASET_FETCH_LIMIT", "DATASET_MAX_ROWS",
	"DATASET_SEED", "DATASET_WATCH", "DATASET_REQUEST_TIMEOUT",
	"INDEX_MAX_FEATURES", "SERVER_ADDR", "SERVER_MAX_TOP_N", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; empty values fall back to
// defaults.
func clearEnv(t *testing.T) {
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	assert.Equal(t, "csv", cfg.Dataset.Source)
	assert.Equal(t, "./data/zomato.csv", cfg.Dataset.Path)
	assert.Equal(t, "ManikaSaini/zomato-restaurant-recommendation", cfg.Dataset.HubName)
	assert.Equal(t, 100, cfg.Dataset.HubPageSize)
	assert.Equal(t, 8000, cfg.Dataset.MaxRows)
	assert.Equal(t, uint64(42), cfg.Dataset.Seed)
	assert.False(t, cfg.Dataset.Watch)
	assert.Equal(t, 30*time.Second, cfg.Dataset.RequestTimeout)
	assert.Equal(t, 4000, cfg.Index.MaxFeatures)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.Server.MaxTopN)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"DATASET_SOURCE":          "hub",
		"DATASET_HUB_PAGE_SIZE":   "50",
		"DATASET_HUB_RATE":        "2.5",
		"DATASET_FETCH_LIMIT":     "1000",
		"DATASET_MAX_ROWS":        "500",
		"DATASET_SEED":            "7",
		"DATASET_WATCH":           "true",
		"DATASET_REQUEST_TIMEOUT": "5s",
		"INDEX_MAX_FEATURES":      "250",
		"SERVER_ADDR":             ":9090",
		"LOG_LEVEL":               "debug",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg := config.Load()

	assert.Equal(t, "hub", cfg.Dataset.Source)
	assert.Equal(t, 50, cfg.Dataset.HubPageSize)
	assert.Equal(t, 2.5, cfg.Dataset.HubRate)
	assert.Equal(t, 1000, cfg.Dataset.FetchLimit)
	assert.Equal(t, 500, cfg.Dataset.MaxRows)
	assert.Equal(t, uint64(7), cfg.Dataset.Seed)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, 5*time.Second, cfg.Dataset.RequestTimeout)
	assert.Equal(t, 250, cfg.Index.MaxFeatures)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"Unknown source", func(c *config.Config) { c.Dataset.Source = "s3" }},
		{"Missing CSV path", func(c *config.Config) { c.Dataset.Path = "" }},
		{"Zero max rows", func(c *config.Config) { c.Dataset.MaxRows = 0 }},
		{"Page size too large", func(c *config.Config) { c.Dataset.HubPageSize = 500 }},
		{"Zero max features", func(c *config.Config) { c.Index.MaxFeatures = 0 }},
		{"Bad log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"Empty address", func(c *config.Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := config.Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetStringEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		expected     string
	}{
		{"Existing env var", "test_value", "default", "test_value"},
		{"Empty env var", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_STRING", tt.envValue)
			assert.Equal(t, tt.expected, config.GetStringEnv("TEST_STRING", tt.defaultValue))
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"Valid int", "42", 10, 42},
		{"Invalid int", "not_a_number", 10, 10},
		{"Negative int", "-5", 10, -5},
		{"Zero", "0", 10, 0},
		{"Unset", "", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetIntEnv("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetUintEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue uint64
		expected     uint64
	}{
		{"Valid uint", "7", 42, 7},
		{"Max uint64", "18446744073709551615", 42, 18446744073709551615},
		{"Negative", "-1", 42, 42},
		{"Invalid", "seed", 42, 42},
		{"Unset", "", 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_UINT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetUintEnv("TEST_UINT", tt.defaultValue))
		})
	}
}

func TestLoadConfig_NegativeSeedFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATASET_SEED", "-1")

	cfg := config.Load()

	assert.Equal(t, uint64(42), cfg.Dataset.Seed)
}

func TestGetFloatEnv(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, config.GetFloatEnv("TEST_FLOAT", 1))

	t.Setenv("TEST_FLOAT", "fast")
	assert.Equal(t, 1.0, config.GetFloatEnv("TEST_FLOAT", 1))
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{"True string", "true", false, true},
		{"False string", "false", true, false},
		{"1 (true)", "1", false, true},
		{"0 (false)", "0", true, false},
		{"Invalid bool", "invalid", true, true},
		{"Unset", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, config.GetBoolEnv("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{"Valid duration - seconds", "5s", 1 * time.Second, 5 * time.Second},
		{"Valid duration - combined", "1h30m", 1 * time.Second, 90 * time.Minute},
		{"Invalid duration", "invalid", 5 * time.Second, 5 * time.Second},
		{"Unset", "", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)
			assert.Equal(t, tt.expected, config.GetDurationEnv("TEST_DURATION", tt.defaultValue))
		})
	}
}
