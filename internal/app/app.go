// Package app wires configuration, storage, services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/tracing"
	"github.com/rs/zerolog/log"
)

// Application is the wired service together with the resources it owns.
type Application struct {
	Router *gin.Engine

	closers []func(context.Context) error
}

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context, cfg config.Config) (*Application, error) {
	InitializeLogger(cfg.Log)

	app := &Application{}

	provider, err := tracing.Init(ctx, tracingConfig(cfg.Tracing))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.onClose(provider.Shutdown)

	catalog, err := InitializeCatalog(ctx, cfg.Database)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if catalog.Mongo != nil {
		app.onClose(catalog.Mongo.Close)
	}

	services, err := InitializeServices(cfg, catalog.Repo)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	router := InitializeRouter(cfg, services, catalog)
	app.Router = router.Engine
	app.onClose(func(context.Context) error {
		router.Limiter.Stop()
		return nil
	})

	log.Info().
		Str("strategy", string(services.Strategy)).
		Bool("mongodb", catalog.Mongo != nil).
		Bool("dose_parser", services.DoseParser != nil).
		Bool("advisor", services.Advisor != nil).
		Msg("Application initialized")
	return app, nil
}

func (a *Application) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func tracingConfig(cfg config.TracingConfig) tracing.Config {
	tc := tracing.DefaultConfig(cfg.ServiceName)
	tc.Enabled = cfg.Enabled
	tc.Environment = cfg.Environment
	tc.OTLPEndpoint = cfg.OTLPEndpoint
	tc.SampleRate = cfg.SampleRate
	return tc
}
