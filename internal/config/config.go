package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gocleanse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Storage   StorageConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	Encoding  EncodingConfig
	Lookup    LookupConfig
	Server    ServerConfig
	Logging   LoggingConfig
}

// StorageConfig decides where cleaning artifacts are persisted
type StorageConfig struct {
	Backend         string // "file" or "sql"
	Dir             string // base directory of the file backend
	RegistryName    string
	MappingName     string
	CorrelationPath string
}

// DatabaseConfig holds database connection settings for the sql backend
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	URL    string
}

// ProfilingConfig holds column classification settings
type ProfilingConfig struct {
	InferenceSampleSize int
	MajorityThreshold   float64
}

// EncodingConfig holds categorical encoding settings
type EncodingConfig struct {
	CategoryOrder         string
	UnknownCategoryPolicy string
}

// LookupConfig points at an optional critical value table override
type LookupConfig struct {
	Path string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	UploadDir       string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// LoggingConfig holds slog settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Storage:   *loadStorageConfig(),
		Database:  *loadDatabaseConfig(),
		Profiling: *loadProfilingConfig(),
		Encoding:  *loadEncodingConfig(),
		Lookup:    LookupConfig{Path: getEnvOrDefault("LOOKUP_TABLE_PATH", "")},
		Server:    *loadServerConfig(),
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Backend:         strings.ToLower(getEnvOrDefault("ARTIFACT_STORE", "file")),
		Dir:             getEnvOrDefault("ARTIFACT_DIR", "./artifacts"),
		RegistryName:    getEnvOrDefault("OUTLIER_REGISTRY_NAME", "outliers.json"),
		MappingName:     getEnvOrDefault("CATEGORICAL_MAPPING_NAME", "categorical_mapping.json"),
		CorrelationPath: getEnvOrDefault("CORRELATION_EXPORT_PATH", ""),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	url := getEnvOrDefault("DATABASE_URL", "")
	defaultDriver := "sqlite"
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		defaultDriver = "postgres"
	}
	return &DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", defaultDriver)),
		URL:    url,
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		InferenceSampleSize: getEnvIntOrDefault("INFERENCE_SAMPLE_SIZE", 10),
		MajorityThreshold:   getEnvFloatOrDefault("INFERENCE_MAJORITY", 0.5),
	}
}

func loadEncodingConfig() *EncodingConfig {
	return &EncodingConfig{
		CategoryOrder:         strings.ToLower(getEnvOrDefault("CATEGORY_ORDER", "sorted")),
		UnknownCategoryPolicy: strings.ToLower(getEnvOrDefault("UNKNOWN_CATEGORY_POLICY", "error")),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:  int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func validateConfig(config *Config) error {
	switch config.Storage.Backend {
	case "file":
		if config.Storage.Dir == "" {
			return errors.ConfigInvalid("ARTIFACT_DIR is required for the file artifact store")
		}
	case "sql":
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the sql artifact store")
		}
	default:
		return errors.ConfigInvalid("ARTIFACT_STORE must be file or sql, got " + config.Storage.Backend)
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite, got " + config.Database.Driver)
	}
	if config.Profiling.InferenceSampleSize <= 0 {
		return errors.ConfigInvalid("INFERENCE_SAMPLE_SIZE must be positive")
	}
	if config.Profiling.MajorityThreshold <= 0 || config.Profiling.MajorityThreshold >= 1 {
		return errors.ConfigInvalid("INFERENCE_MAJORITY must be in (0, 1)")
	}
	switch config.Encoding.CategoryOrder {
	case "sorted", "first_seen":
	default:
		return errors.ConfigInvalid("CATEGORY_ORDER must be sorted or first_seen")
	}
	switch config.Encoding.UnknownCategoryPolicy {
	case "error", "reserve":
	default:
		return errors.ConfigInvalid("UNKNOWN_CATEGORY_POLICY must be error or reserve")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
