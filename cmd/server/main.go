// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Command server runs the Moodshare feed server.
//
// Startup order:
//  1. Load configuration (.env, config file, environment).
//  2. Initialize logging.
//  3. Open the badger store and seed the registry and moderation queue.
//  4. Assemble the supervision tree: badger GC (data layer), broadcast hub
//     and expiry sweeper (messaging layer), HTTP server (api layer).
//  5. Serve until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moodshare/moodshare/internal/api"
	"github.com/moodshare/moodshare/internal/config"
	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/moderation"
	"github.com/moodshare/moodshare/internal/registry"
	"github.com/moodshare/moodshare/internal/store"
	"github.com/moodshare/moodshare/internal/supervisor"
	"github.com/moodshare/moodshare/internal/supervisor/services"
	"github.com/moodshare/moodshare/internal/sweeper"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("storage_path", cfg.Storage.Path).
		Dur("sweep_interval", cfg.Sweep.Interval).
		Bool("admin_enabled", cfg.Security.AdminSecret != "").
		Msg("starting moodshare")

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("store close failed")
		}
	}()

	// Domain components. The hub carries the feed; the registry broadcasts
	// through it; the moderation queue shares the registry's store.
	eventHub := hub.New(cfg.Hub.SubscriberBuffer)
	reg := registry.New(st, eventHub)
	if err := reg.Load(); err != nil {
		logging.Fatal().Err(err).Msg("failed to load content registry")
	}
	queue := moderation.New(reg, st, eventHub,
		moderation.WithReportsPerMinute(cfg.Security.ReportsPerMinute))
	if err := queue.Load(); err != nil {
		logging.Fatal().Err(err).Msg("failed to load moderation queue")
	}

	handlers := api.NewHandlers(reg, queue, eventHub)
	router := api.NewRouter(handlers, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewBadgerGCService(st, cfg.Storage.GCInterval))
	tree.AddMessagingService(eventHub)
	tree.AddMessagingService(sweeper.New(reg, cfg.Sweep.Interval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("moodshare stopped")
}
