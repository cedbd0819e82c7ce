// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yunseo/gabiad/internal/api"
	"github.com/yunseo/gabiad/internal/config"
	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/health"
	"github.com/yunseo/gabiad/internal/jobs"
	"github.com/yunseo/gabiad/internal/log"
	"github.com/yunseo/gabiad/internal/store"
	"github.com/yunseo/gabiad/internal/validation"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "send":
			os.Exit(runSendCLI(os.Args[2:]))
		case "result":
			os.Exit(runResultCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Service: "gabiad", Version: version})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(*configPath, version).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "gabiad", Version: cfg.Version})

	if *configPath != "" {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "file").
			Str("path", *configPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := validation.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
	}

	journal, err := store.Open(cfg.DBPath, store.DefaultConfig())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "store.open_failed").
			Str("db_path", cfg.DBPath).
			Msg("failed to open message journal")
	}
	defer func() { _ = journal.Close() }()

	client := gabia.New(gabia.Config{
		APIURL:           cfg.APIURL,
		APIID:            cfg.APIID,
		APIKey:           cfg.APIKey,
		Sender:           cfg.Sender,
		Timeout:          cfg.UpstreamTimeout,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerReset:     cfg.BreakerReset,
		SendRate:         rate.Limit(cfg.SendRate),
		SendBurst:        cfg.SendBurst,
	})

	healthMgr := health.NewManager(cfg.Version)
	healthMgr.RegisterChecker(health.NewStoreChecker(journal))
	healthMgr.RegisterChecker(health.NewUpstreamChecker(client.BreakerOpen))

	srv := api.New(cfg, client, journal, healthMgr)
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	poller := jobs.New(jobs.Config{
		Upstream:    client,
		Journal:     journal,
		Interval:    cfg.PollInterval,
		Grace:       cfg.PollGrace,
		Concurrency: cfg.PollConcurrency,
		ReportPath:  filepath.Join(cfg.DataDir, "delivery-report.json"),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str(log.FieldEvent, "http.listening").
			Str("addr", cfg.Listen).
			Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := poller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if *configPath != "" {
		g.Go(func() error {
			if err := config.Watch(gctx, *configPath, version); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon exited with error")
		os.Exit(1)
	}
	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("shutdown complete")
}
