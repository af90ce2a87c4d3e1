package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pharmcart/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     base URL of the ordering API
//	-t duration   per-request timeout, e.g. 5s
//	-d string     path of the local state database
//	-m string     listen address for /metrics (empty disables it)
//	-r            restore the last confirmed quantity when a cart update fails
//
// Other arguments are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "--a", "-t", "--t", "-d", "--d", "-m", "--m", "-r", "--r",
	})

	fs := flag.NewFlagSet("pharmcart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the ordering API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.StateDBPath, "d", cfg.StateDBPath, "path of the local state database")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "listen address for /metrics")
	fs.BoolVar(&cfg.RollbackOnFailure, "r", cfg.RollbackOnFailure, "roll back failed cart mutations")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
