package config

import (
	"os"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "APP_HTTP_ADDR", "METRICS_ADDR", "LOG_LEVEL",
	"USER_SDK_KEY", "USER_POLL_INTERVAL_SECONDS",
	"PAYMENT_SDK_KEY", "PAYMENT_POLL_INTERVAL_SECONDS",
	"FLAG_BASE_URL", "OTLP_ENDPOINT", "RATE_LIMIT_PER_IP",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "dev" {
		t.Errorf("Expected AppEnv='dev', got '%s'", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr=':8080', got '%s'", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("Expected MetricsAddr=':9090', got '%s'", cfg.MetricsAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel='info', got '%s'", cfg.LogLevel)
	}
	if cfg.UserPollInterval != 60*time.Second {
		t.Errorf("Expected UserPollInterval=60s, got %v", cfg.UserPollInterval)
	}
	if cfg.PaymentPollInterval != 30*time.Second {
		t.Errorf("Expected PaymentPollInterval=30s, got %v", cfg.PaymentPollInterval)
	}
	if cfg.RateLimitPerIP != 100 {
		t.Errorf("Expected RateLimitPerIP=100, got %d", cfg.RateLimitPerIP)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_HTTP_ADDR", ":9999")
	t.Setenv("USER_SDK_KEY", "key-user")
	t.Setenv("PAYMENT_SDK_KEY", "key-payment")
	t.Setenv("USER_POLL_INTERVAL_SECONDS", "15")
	t.Setenv("RATE_LIMIT_PER_IP", "200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("Expected HTTPAddr=':9999', got '%s'", cfg.HTTPAddr)
	}
	if cfg.UserSDKKey != "key-user" {
		t.Errorf("Expected UserSDKKey='key-user', got '%s'", cfg.UserSDKKey)
	}
	if cfg.PaymentSDKKey != "key-payment" {
		t.Errorf("Expected PaymentSDKKey='key-payment', got '%s'", cfg.PaymentSDKKey)
	}
	if cfg.UserPollInterval != 15*time.Second {
		t.Errorf("Expected UserPollInterval=15s, got %v", cfg.UserPollInterval)
	}
	if cfg.RateLimitPerIP != 200 {
		t.Errorf("Expected RateLimitPerIP=200, got %d", cfg.RateLimitPerIP)
	}
}

func validConfig() *Config {
	return &Config{
		AppEnv:              "dev",
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		UserSDKKey:          "key-user",
		UserPollInterval:    60 * time.Second,
		PaymentSDKKey:       "key-payment",
		PaymentPollInterval: 30 * time.Second,
		RateLimitPerIP:      100,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }, "APP_HTTP_ADDR"},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }, "METRICS_ADDR"},
		{"missing user sdk key", func(c *Config) { c.UserSDKKey = "" }, "USER_SDK_KEY"},
		{"missing payment sdk key", func(c *Config) { c.PaymentSDKKey = "" }, "PAYMENT_SDK_KEY"},
		{"zero user poll interval", func(c *Config) { c.UserPollInterval = 0 }, "USER_POLL_INTERVAL_SECONDS"},
		{"negative payment poll interval", func(c *Config) { c.PaymentPollInterval = -time.Second }, "PAYMENT_POLL_INTERVAL_SECONDS"},
		{"negative rate limit", func(c *Config) { c.RateLimitPerIP = -1 }, "RATE_LIMIT_PER_IP"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}
