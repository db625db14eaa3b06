// Package config provides configuration management for the Splunk ITSI MCP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/security"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Splunk Connection Configuration
	SplunkURL string `json:"splunk_url"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"` // Not stored in files, from env only
	Token     string `json:"token,omitempty"`    // Optional bearer token; wins over username/password

	// Security
	// TLSVerify defaults to false because Splunk management ports commonly run
	// self-signed certificates. It is an opt-out, not hardcoded off: set
	// SPLUNK_TLS_VERIFY=true to enforce verification.
	TLSVerify bool `json:"tls_verify"`

	// HTTP Client Configuration
	Timeout         time.Duration `json:"timeout"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout"`

	// Search Job Configuration
	SearchMaxWait      time.Duration `json:"search_max_wait"`      // Wait budget for the poll loop (default: 60s)
	SearchPollInterval time.Duration `json:"search_poll_interval"` // Fixed poll interval (default: 1s)
	SearchMaxResults   int           `json:"search_max_results"`   // Cap on rows read from a results response (default: 100)

	// Rate Limiting (off by default; no client-side coordination is attempted
	// unless explicitly enabled)
	RateLimit       int  `json:"rate_limit"`
	RateLimitBurst  int  `json:"rate_limit_burst"`
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Observability
	EnableTracing   bool   `json:"enable_tracing"`
	EnableAuditLog  bool   `json:"enable_audit_log"`
	MetricsEndpoint bool   `json:"metrics_endpoint"`
	HealthPort      int    `json:"health_port"`      // 0 disables the health HTTP server
	HealthBindAddr  string `json:"health_bind_addr"` // default 127.0.0.1

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console

	// Shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// MaxSearchResultsCap bounds how many rows a single tool call may request.
const MaxSearchResultsCap = 10000

// Load configuration from environment variables and an optional config file
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		TLSVerify:          false,
		Timeout:            30 * time.Second,
		MaxIdleConns:       10,
		IdleConnTimeout:    90 * time.Second,
		SearchMaxWait:      60 * time.Second,
		SearchPollInterval: 1 * time.Second,
		SearchMaxResults:   100,
		RateLimit:          100,
		RateLimitBurst:     20,
		EnableRateLimit:    false,
		EnableTracing:      false,
		EnableAuditLog:     true,
		MetricsEndpoint:    false,
		HealthBindAddr:     "127.0.0.1",
		LogLevel:           "info",
		LogFormat:          "json",
		ShutdownTimeout:    10 * time.Second,
	}

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Environment variables take precedence over the file
	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: path traversal detected")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SPLUNK_URL"); v != "" {
		cfg.SplunkURL = v
	}
	if v := os.Getenv("SPLUNK_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("SPLUNK_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("SPLUNK_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("SPLUNK_TLS_VERIFY"); v != "" {
		cfg.TLSVerify = v == "true" || v == "1"
	}
	if v := os.Getenv("SPLUNK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("SPLUNK_SEARCH_MAX_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SearchMaxWait = d
		}
	}
	if v := os.Getenv("SPLUNK_SEARCH_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SearchPollInterval = d
		}
	}
	if v := os.Getenv("SPLUNK_SEARCH_MAX_RESULTS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.SearchMaxResults = n
		}
	}
	if v := os.Getenv("SPLUNK_RATE_LIMIT"); v != "" {
		var limit int
		if _, err := fmt.Sscanf(v, "%d", &limit); err == nil {
			cfg.RateLimit = limit
		}
	}
	if v := os.Getenv("SPLUNK_RATE_LIMIT_BURST"); v != "" {
		var burst int
		if _, err := fmt.Sscanf(v, "%d", &burst); err == nil {
			cfg.RateLimitBurst = burst
		}
	}
	if v := os.Getenv("SPLUNK_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = v == "true" || v == "1"
	}
	if v := os.Getenv("SPLUNK_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = v == "true" || v == "1"
	}
	if v := os.Getenv("SPLUNK_ENABLE_AUDIT_LOG"); v != "" {
		cfg.EnableAuditLog = v == "true" || v == "1"
	}
	if v := os.Getenv("SPLUNK_METRICS_ENDPOINT"); v != "" {
		cfg.MetricsEndpoint = v == "true" || v == "1"
	}
	if v := os.Getenv("SPLUNK_HEALTH_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("SPLUNK_HEALTH_BIND_ADDR"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
}

// Validate checks if the configuration is valid. Every outbound operation
// requires a valid connection config, so this must fail before any HTTP call.
func (c *Config) Validate() error {
	if c.SplunkURL == "" {
		return errors.New("SPLUNK_URL is required")
	}
	if !strings.HasPrefix(c.SplunkURL, "http://") && !strings.HasPrefix(c.SplunkURL, "https://") {
		return fmt.Errorf("SPLUNK_URL must start with http:// or https://, got %q", c.SplunkURL)
	}
	if c.Token == "" {
		if c.Username == "" || c.Password == "" {
			return errors.New("SPLUNK_USERNAME and SPLUNK_PASSWORD (or SPLUNK_TOKEN) are required")
		}
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.SearchMaxWait <= 0 {
		return errors.New("search_max_wait must be positive")
	}
	if c.SearchPollInterval <= 0 {
		return errors.New("search_poll_interval must be positive")
	}
	if c.SearchMaxResults <= 0 || c.SearchMaxResults > MaxSearchResultsCap {
		return fmt.Errorf("search_max_results must be between 1 and %d", MaxSearchResultsCap)
	}
	if c.RateLimit <= 0 && c.EnableRateLimit {
		return errors.New("rate_limit must be positive when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// Redact returns a copy of the config with sensitive data removed
func (c *Config) Redact() *Config {
	redacted := *c
	if redacted.Password != "" {
		redacted.Password = "***REDACTED***"
	}
	if redacted.Token != "" {
		redacted.Token = security.MaskToken(redacted.Token)
	}
	return &redacted
}
