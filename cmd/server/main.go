package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cuisine-engine/backend/internal/api"
	"github.com/cuisine-engine/backend/internal/config"
	"github.com/cuisine-engine/backend/internal/engine"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "cuisine-recommender")

	// 1. Config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		entry.Fatal(err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	entry.Info("Starting Cuisine Recommender API Service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Dataset source
	src, err := engine.NewSource(cfg.Dataset, entry)
	if err != nil {
		entry.Fatalf("Failed to initialize dataset source: %v", err)
	}

	// 3. Engine
	eng := engine.NewEngine(cfg, entry.WithField("component", "engine"), src)
	if err := eng.Load(ctx); err != nil {
		entry.Fatalf("Failed to load dataset: %v", err)
	}

	if cfg.Dataset.Watch && cfg.Dataset.Source == "csv" {
		go func() {
			if err := eng.Watch(ctx, cfg.Dataset.Path); err != nil {
				entry.WithError(err).Error("Dataset watcher stopped")
			}
		}()
	}

	// 4. API Server
	server := api.NewServer(eng, entry.WithField("component", "api"))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Error("Shutdown failed")
		}
	}()

	entry.Infof("Cuisine Recommender API ready on %s", cfg.Server.Addr)
	if err := server.Start(); err != nil {
		entry.Fatal(err)
	}
	entry.Info("Server stopped")
}
