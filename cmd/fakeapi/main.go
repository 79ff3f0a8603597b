package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/simradar/internal/config"
	"github.com/gravadigital/simradar/internal/fakeapi"
	"github.com/gravadigital/simradar/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)
	log := logger.Server()

	store := fakeapi.NewStore()
	if cfg.Server.Seed {
		fakeapi.Seed(store)
		log.Info("Sample data loaded")
	}

	srv := fakeapi.New(cfg, store)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("Server failed", "error", err)
		}
		return
	case sig := <-quit:
		log.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
