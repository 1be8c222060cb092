// Package main implements the entry point for the hanzideck API server,
// which serves the static card catalog merged with per-user spaced
// repetition state and persists review outcomes through a buffered
// write queue.
package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/hanzideck/hanzideck-api/internal/config"
	"github.com/hanzideck/hanzideck-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires the
// application components together.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"catalog_path", cfg.Catalog.Path)

	return newApplication(cfg, appLogger)
}
