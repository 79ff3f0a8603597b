package main

import (
	"errors"
	"os"

	"github.com/gravadigital/simradar/internal/actions"
	"github.com/gravadigital/simradar/internal/config"
	"github.com/gravadigital/simradar/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)

	app := newApp(cfg, os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		// the alert was already shown
		if errors.Is(err, actions.ErrEventFull) {
			os.Exit(2)
		}
		logger.Get().Error("Application failed", "error", err)
		os.Exit(1)
	}
}
