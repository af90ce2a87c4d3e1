package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/pharmcart/internal/buildinfo"
	"github.com/dmitrijs2005/pharmcart/internal/client/cli"
	"github.com/dmitrijs2005/pharmcart/internal/client/config"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
	"github.com/dmitrijs2005/pharmcart/internal/metrics"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(cfg, logger); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec metrics.Recorder = metrics.Nop{}
	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		rec = metrics.NewCollector(reg)
	}

	app, err := cli.NewApp(ctx, cfg, logger, rec)
	if err != nil {
		return err
	}
	defer app.Close()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info(gctx, "metrics server listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// the REPL blocks on stdin, so a signal must not wait for it
	done := make(chan error, 1)
	go func() { done <- app.Run(gctx) }()

	select {
	case err = <-done:
	case <-gctx.Done():
	}
	stop()

	return errors.Join(err, g.Wait())
}
