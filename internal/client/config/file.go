package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/pharmcart/internal/flagx"
	"github.com/dmitrijs2005/pharmcart/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding config files. Fields
// are pointers so keys missing from the file keep their earlier values.
// Durations use timex.Duration and accept "30s" or integer nanoseconds.
type FileConfig struct {
	APIBaseURL        *string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	StateDBPath       *string         `json:"state_db_path" yaml:"state_db_path"`
	RateLimit         *float64        `json:"rate_limit" yaml:"rate_limit"`
	RateBurst         *int            `json:"rate_burst" yaml:"rate_burst"`
	StaleTime         *timex.Duration `json:"stale_time" yaml:"stale_time"`
	MetricsAddr       *string         `json:"metrics_addr" yaml:"metrics_addr"`
	LogBackend        *string         `json:"log_backend" yaml:"log_backend"`
	LogLevel          *string         `json:"log_level" yaml:"log_level"`
	RollbackOnFailure *bool           `json:"rollback_on_failure" yaml:"rollback_on_failure"`
}

// parseFile overlays cfg with the file given by -c or -config. The format
// follows the extension: .yaml and .yml are YAML, anything else is JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.StateDBPath != nil {
		cfg.StateDBPath = *fc.StateDBPath
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.RateBurst != nil {
		cfg.RateBurst = *fc.RateBurst
	}
	if fc.StaleTime != nil {
		cfg.StaleTime = fc.StaleTime.Duration
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
	if fc.LogBackend != nil {
		cfg.LogBackend = *fc.LogBackend
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.RollbackOnFailure != nil {
		cfg.RollbackOnFailure = *fc.RollbackOnFailure
	}
}
