// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nappsnasarawa/levyreceipt/internal/logger"
)

type Config struct {
	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	// Portal payment search
	PortalBaseURL string
	PortalTimeout time.Duration

	// Receipt rendering
	OutputDir    string
	BulkInterval time.Duration
	Overflow     string
	Code         string
	VerifyURL    string
	LogoPath     string

	// S3-compatible receipt storage
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
	S3Prefix    string

	// Lookup cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// HTTP server
	HTTPAddr        string
	HTTPRenderRate  float64
	HTTPRenderBurst int
}

// Load reads the configuration from the environment. Values that are present
// but malformed are reported; absent values take their defaults.
func Load() (*Config, error) {
	config := &Config{
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
		PortalBaseURL: getEnv("PORTAL_BASE_URL", ""),
		OutputDir:     getEnv("RECEIPT_OUTPUT_DIR", "receipts"),
		Overflow:      getEnv("RECEIPT_OVERFLOW", "fail"),
		Code:          getEnv("RECEIPT_CODE", "none"),
		VerifyURL:     getEnv("RECEIPT_VERIFY_URL", ""),
		LogoPath:      getEnv("RECEIPT_LOGO", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Prefix:      getEnv("S3_PREFIX", "receipts/"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
	}

	var errs []error
	var err error
	if config.PortalTimeout, err = getDuration("PORTAL_TIMEOUT", 15*time.Second); err != nil {
		errs = append(errs, err)
	}
	if config.BulkInterval, err = getDuration("RECEIPT_BULK_INTERVAL", 500*time.Millisecond); err != nil {
		errs = append(errs, err)
	}
	if config.CacheTTL, err = getDuration("LOOKUP_CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if config.S3PathStyle, err = getBool("S3_PATH_STYLE", true); err != nil {
		errs = append(errs, err)
	}
	if config.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if config.HTTPRenderRate, err = getFloat("HTTP_RENDER_RATE", 0); err != nil {
		errs = append(errs, err)
	}
	if config.HTTPRenderBurst, err = getInt("HTTP_RENDER_BURST", 10); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// RequirePortal reports whether the portal lookup is configured.
func (c *Config) RequirePortal() error {
	if c.PortalBaseURL == "" {
		return fmt.Errorf("PORTAL_BASE_URL is required")
	}
	return nil
}

// RequireS3 reports whether S3 storage is configured.
func (c *Config) RequireS3() error {
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.S3AccessKey == "" || c.S3SecretKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	return nil
}

// UseS3 is true when receipts should be written to object storage.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
