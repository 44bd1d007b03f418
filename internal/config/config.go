// Package config provides configuration loading and validation for the
// match API server. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the match API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (optional; rate limiting falls back to in-memory when unset)
	RedisURL string `koanf:"redis_url"`

	// Matching engine
	RecommendationPoolSize int    `koanf:"recommendation_pool_size"`
	GenreCalibrationPath   string `koanf:"genre_calibration_path"`

	// Rate limiting
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"`
	TracingEndpoint     string  `koanf:"tracing_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidPoolSize    = errors.New("RECOMMENDATION_POOL_SIZE must be > 0")
	ErrInvalidRateLimit   = errors.New("RATE_LIMIT_PER_MINUTE must be > 0")
	ErrInvalidSampling    = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort                   = 8080
	DefaultEnv                    = "development"
	DefaultRecommendationPoolSize = 100
	DefaultRateLimitPerMinute     = 120
	DefaultTracingExporter        = "otlp-http"
	DefaultTracingSamplingRate    = 0.1
)

// Load reads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence over file
// values. Returns the loaded config and a slice of validation errors
// (empty if valid). If a config file path is provided and the file
// cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, ErrInvalidPort)
	}

	poolSize, poolErr := getEnvIntOrDefault("RECOMMENDATION_POOL_SIZE",
		k.Int("recommendation_pool_size"), DefaultRecommendationPoolSize)
	if poolErr != nil {
		loadErrs = append(loadErrs, poolErr)
	}

	rateLimit, rateErr := getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE",
		k.Int("rate_limit_per_minute"), DefaultRateLimitPerMinute)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	samplingRate, samplingErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE",
		k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	cfg := &Config{
		Port:                   port,
		Env:                    getEnvOrDefault("MARQUEE_ENV", k.String("env"), DefaultEnv),
		DatabaseURL:            getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:               getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		RecommendationPoolSize: poolSize,
		GenreCalibrationPath:   getEnvOrKoanf("GENRE_CALIBRATION_PATH", k, "genre_calibration_path"),
		RateLimitPerMinute:     rateLimit,
		TracingEnabled:         getEnvBoolOrDefault("TRACING_ENABLED", k.Bool("tracing_enabled")),
		TracingExporter:        getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), DefaultTracingExporter),
		TracingEndpoint:        getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingSamplingRate:    samplingRate,
		TracingInsecure:        getEnvBoolOrDefault("TRACING_INSECURE", k.Bool("tracing_insecure")),
	}

	loadErrs = append(loadErrs, cfg.validate()...)
	return cfg, loadErrs
}

// validate checks required fields and value ranges.
func (c *Config) validate() []error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.RecommendationPoolSize <= 0 {
		errs = append(errs, ErrInvalidPoolSize)
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSampling)
	}
	return errs
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnvOrKoanf returns the env var value if set, else the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the env var value if set, else the file value,
// else the default.
func getEnvOrDefault(envKey, fileVal, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if fileVal != "" {
		return fileVal
	}
	return defaultVal
}

// getEnvIntOrDefault parses an integer env var with file and default
// fallbacks. Returns an error when the env var is set but unparseable.
func getEnvIntOrDefault(envKey string, fileVal, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return parsed, nil
	}
	if fileVal != 0 {
		return fileVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault parses a float env var with file and default
// fallbacks. Returns an error when the env var is set but unparseable.
func getEnvFloatOrDefault(envKey string, fileVal, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid number: %w", envKey, err)
		}
		return parsed, nil
	}
	if fileVal != 0 {
		return fileVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrDefault parses a boolean env var with a file fallback.
func getEnvBoolOrDefault(envKey string, fileVal bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch val {
		case "true", "1", "yes", "on", "TRUE", "True":
			return true
		case "false", "0", "no", "off", "FALSE", "False":
			return false
		}
	}
	return fileVal
}
