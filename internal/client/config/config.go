package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/pharmcart/internal/logging"
)

// Config holds runtime settings for the pharmcart client.
//
// Units: RequestTimeout and StaleTime are time.Duration values; RateLimit is
// requests per second (0 disables throttling).
type Config struct {
	APIBaseURL        string
	RequestTimeout    time.Duration
	StateDBPath       string
	RateLimit         float64
	RateBurst         int
	StaleTime         time.Duration
	MetricsAddr       string
	LogBackend        string
	LogLevel          string
	RollbackOnFailure bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
	c.StateDBPath = "pharmcart.db"
	c.RateLimit = 10
	c.RateBurst = 20
	c.StaleTime = 30 * time.Second
	c.MetricsAddr = ""
	c.LogBackend = logging.BackendSlog
	c.LogLevel = "info"
	c.RollbackOnFailure = false
}

// LoadConfig builds a Config from defaults, then the config file named by
// -c/-config (if any), then command-line flags. Later sources take
// precedence. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later in less obvious
// places.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url %q: must be an absolute http(s) URL", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.StateDBPath == "" {
		return fmt.Errorf("state_db_path must not be empty")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate_limit and rate_burst must not be negative")
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("stale_time must not be negative, got %s", c.StaleTime)
	}
	switch c.LogBackend {
	case logging.BackendSlog, logging.BackendZap:
	default:
		return fmt.Errorf("log_backend %q: want %q or %q", c.LogBackend, logging.BackendSlog, logging.BackendZap)
	}
	return nil
}
