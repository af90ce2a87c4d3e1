// Package config loads runtime configuration for the pharmcart client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the ordering API
//	-t duration   per-request timeout
//	-d string     path of the local state database
//	-m string     listen address for /metrics
//	-r            roll back failed cart mutations
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds. Keys left out keep their previous value:
//
//	{
//	  "api_base_url": "http://localhost:5000",
//	  "request_timeout": "10s",
//	  "state_db_path": "pharmcart.db",
//	  "rate_limit": 10,
//	  "rate_burst": 20,
//	  "stale_time": "30s",
//	  "metrics_addr": "",
//	  "log_backend": "slog",
//	  "log_level": "info",
//	  "rollback_on_failure": false
//	}
//
// The package does not read environment variables.
package config
