// Package main is the entry point for the prescription reconciliation service.
//
// @title           Smart Scrip API
// @version         1.0.0
// @description     Converts a prescription into a dispense quantity and a package selection.
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key identifying the client. Required if authentication is enabled.
//
// @tag.name        Reconciliation
// @tag.description Quantity and package reconciliation
//
// @tag.name        Catalog
// @tag.description Drug and package catalog administration
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.InitializeApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	server := app.NewServer(application.Router, cfg.Server)
	runErr := server.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to release resources")
	}

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Server error")
	}
}
