// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Spacetraveling blog server.
// It loads configuration, builds the site, warms the pre-rendered pages and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"spacetraveling/internal/config"
	"spacetraveling/internal/middleware"
	"spacetraveling/internal/router"
	"spacetraveling/web"
)

func main() {
	app := &cli.App{
		Name:  "spacetraveling",
		Usage: "Spacetraveling blog server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file merged into the environment before configuration is read",
				Value:   ".env",
				EnvVars: []string{"SPACETRAVELING_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "minimum log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setup,
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the site (default)",
				Action: runServe,
			},
			{
				Name:  "warm",
				Usage: "generate the listing, feed and pre-rendered posts into the page store, then exit",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "purge",
						Usage: "remove every stored page before warming",
					},
				},
				Action: runWarm,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// setup installs the default logger and merges the dotenv file.
func setup(cctx *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cctx.String("log-level"))); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	return config.LoadEnvFile(cctx.String("env-file"))
}

func runServe(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"endpoint", cfg.PrismicEndpoint,
		"revalidate", cfg.Revalidate.String(),
		"valkey", cfg.UseValkey(),
	)

	s, err := build(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	// Pre-render the listing and static paths without delaying startup.
	warmCtx, cancelWarm := context.WithCancel(context.Background())
	defer cancelWarm()
	go func() {
		if err := s.Warm(warmCtx); err != nil {
			slog.Warn("warm-up incomplete; pages will be generated on demand", "error", err)
		}
	}()

	limiter := middleware.NewRateLimiter(cfg.LoadMoreRate, time.Minute).TrustProxies(cfg.TrustedProxies)
	r := router.New(s.public, web.Static(), limiter)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PrismicTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	cancelWarm()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Let background regenerations store their pages.
	s.isr.Wait()
	slog.Info("server stopped gracefully")
	return nil
}

func runWarm(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if !cfg.UseValkey() {
		slog.Warn("VALKEY_HOST is not set; warmed pages are discarded when this command exits")
	}

	s, err := build(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cctx.Bool("purge") {
		s.store.Purge(ctx)
	}
	err = s.Warm(ctx)
	// Generations outlive an interrupted warm-up; let them store their pages.
	s.isr.Wait()
	return err
}
