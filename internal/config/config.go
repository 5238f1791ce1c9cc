// Package config provides application configuration loading from environment
// variables and .env files. It uses viper for flexible configuration
// management with sensible defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv      string // Application environment (dev, staging, prod)
	HTTPAddr    string // HTTP server bind address (e.g., ":8080")
	MetricsAddr string // Metrics server bind address
	LogLevel    string // zerolog level (trace, debug, info, warn, error)

	UserSDKKey          string        // Provider SDK key for the user-management project
	UserPollInterval    time.Duration // Poll interval for the user-management flag cache
	PaymentSDKKey       string        // Provider SDK key for the payment project
	PaymentPollInterval time.Duration // Poll interval for the payment flag cache

	FlagBaseURL    string // Optional provider base URL (proxy / self-hosted)
	OTLPEndpoint   string // Optional OTLP trace collector; empty disables export
	RateLimitPerIP int    // Requests per minute per client IP, 0 disables
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = v.ReadInConfig()    // Ignore error - .env is optional
	v.AutomaticEnv()        // Read from environment variables

	setConfigDefaults(v)

	return &Config{
		AppEnv:              v.GetString("APP_ENV"),
		HTTPAddr:            v.GetString("APP_HTTP_ADDR"),
		MetricsAddr:         v.GetString("METRICS_ADDR"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		UserSDKKey:          v.GetString("USER_SDK_KEY"),
		UserPollInterval:    time.Duration(v.GetInt("USER_POLL_INTERVAL_SECONDS")) * time.Second,
		PaymentSDKKey:       v.GetString("PAYMENT_SDK_KEY"),
		PaymentPollInterval: time.Duration(v.GetInt("PAYMENT_POLL_INTERVAL_SECONDS")) * time.Second,
		FlagBaseURL:         v.GetString("FLAG_BASE_URL"),
		OTLPEndpoint:        v.GetString("OTLP_ENDPOINT"),
		RateLimitPerIP:      v.GetInt("RATE_LIMIT_PER_IP"),
	}, nil
}

// setConfigDefaults sets default values for all configuration options.
// These defaults are suitable for local development but should be overridden in production.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("USER_SDK_KEY", "")
	v.SetDefault("USER_POLL_INTERVAL_SECONDS", 60)
	v.SetDefault("PAYMENT_SDK_KEY", "")
	v.SetDefault("PAYMENT_POLL_INTERVAL_SECONDS", 30)
	v.SetDefault("FLAG_BASE_URL", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("RATE_LIMIT_PER_IP", 100)
}

// ValidationError represents a configuration validation error with details about what failed.
type ValidationError struct {
	Field   string // Name of the configuration field
	Message string // Human-readable error message
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks that the configuration is suitable for starting the service.
// Intended to be called at application startup to fail fast on misconfiguration.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return ValidationError{
			Field:   "APP_HTTP_ADDR",
			Message: "HTTP server address cannot be empty",
		}
	}
	if c.MetricsAddr == "" {
		return ValidationError{
			Field:   "METRICS_ADDR",
			Message: "metrics server address cannot be empty",
		}
	}
	if c.UserSDKKey == "" {
		return ValidationError{
			Field:   "USER_SDK_KEY",
			Message: "SDK key for the user-management project is required",
		}
	}
	if c.PaymentSDKKey == "" {
		return ValidationError{
			Field:   "PAYMENT_SDK_KEY",
			Message: "SDK key for the payment project is required",
		}
	}
	if c.UserPollInterval <= 0 {
		return ValidationError{
			Field:   "USER_POLL_INTERVAL_SECONDS",
			Message: "poll interval must be a positive number of seconds",
		}
	}
	if c.PaymentPollInterval <= 0 {
		return ValidationError{
			Field:   "PAYMENT_POLL_INTERVAL_SECONDS",
			Message: "poll interval must be a positive number of seconds",
		}
	}
	if c.RateLimitPerIP < 0 {
		return ValidationError{
			Field:   "RATE_LIMIT_PER_IP",
			Message: "rate limit cannot be negative (use 0 to disable)",
		}
	}
	return nil
}
